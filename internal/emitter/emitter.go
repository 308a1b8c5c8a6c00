// Package emitter serializes resolved rules into a stylesheet.
//
// Output depends only on the set of rules passed in: rules are deduplicated
// by signature and ordered by (variant depth, variant rank, property
// category, selector), so any insertion order yields the same bytes.
package emitter

import (
	"slices"
	"sort"
	"strings"

	"github.com/yacobolo/utilcss/internal/resolver"
	"github.com/yacobolo/utilcss/internal/theme"
)

// Options controls serialization.
type Options struct {
	Minify bool   // ".p-4{padding:1rem}" instead of indented blocks
	Layer  string // wrap everything in "@layer <Layer>" when set
}

type entry struct {
	rule      *resolver.Rule
	selector  string
	category  Category
	signature string
}

// Order deduplicates rules and returns them in emission order.
func Order(rules []*resolver.Rule) []*resolver.Rule {
	entries := order(rules)
	out := make([]*resolver.Rule, len(entries))
	for i, e := range entries {
		out[i] = e.rule
	}
	return out
}

func order(rules []*resolver.Rule) []entry {
	seen := make(map[string]bool, len(rules))
	entries := make([]entry, 0, len(rules))
	for _, r := range rules {
		if r == nil || len(r.Declarations) == 0 {
			continue
		}
		sig := r.Signature()
		if seen[sig] {
			continue
		}
		seen[sig] = true
		entries = append(entries, entry{
			rule:      r,
			selector:  r.Selector(),
			category:  categorizeProperty(r.Declarations[0].Property),
			signature: sig,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.rule.Depth != b.rule.Depth {
			return a.rule.Depth < b.rule.Depth
		}
		if a.rule.Rank != b.rule.Rank {
			return a.rule.Rank < b.rule.Rank
		}
		if a.category != b.category {
			return a.category < b.category
		}
		if a.selector != b.selector {
			return a.selector < b.selector
		}
		return a.signature < b.signature
	})
	return entries
}

// Emit renders rules as CSS text. An empty rule set yields an empty string.
func Emit(rules []*resolver.Rule, opts Options) string {
	entries := order(rules)
	if len(entries) == 0 {
		return ""
	}

	p := &printer{minify: opts.Minify}
	if opts.Layer != "" {
		p.open("@layer " + opts.Layer)
	}

	for start := 0; start < len(entries); {
		end := start + 1
		for end < len(entries) && slices.Equal(entries[end].rule.Containers, entries[start].rule.Containers) {
			end++
		}
		if start > 0 {
			p.blank()
		}

		containers := entries[start].rule.Containers
		for _, c := range containers {
			p.open(c)
		}
		for _, e := range entries[start:end] {
			p.rule(e.selector, e.rule.Declarations)
		}
		for range containers {
			p.close()
		}
		start = end
	}

	if opts.Layer != "" {
		p.close()
	}
	if opts.Minify {
		p.b.WriteByte('\n')
	}
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	minify bool
	depth  int
}

func (p *printer) indent() {
	for i := 0; i < p.depth; i++ {
		p.b.WriteString("  ")
	}
}

func (p *printer) blank() {
	if !p.minify {
		p.b.WriteByte('\n')
	}
}

func (p *printer) open(prelude string) {
	if p.minify {
		p.b.WriteString(minifyPrelude(prelude))
		p.b.WriteByte('{')
		return
	}
	p.indent()
	p.b.WriteString(prelude)
	p.b.WriteString(" {\n")
	p.depth++
}

func (p *printer) close() {
	if p.minify {
		p.b.WriteByte('}')
		return
	}
	p.depth--
	p.indent()
	p.b.WriteString("}\n")
}

func (p *printer) rule(selector string, decls []theme.Declaration) {
	if p.minify {
		p.b.WriteString(selector)
		p.b.WriteByte('{')
		for i, d := range decls {
			if i > 0 {
				p.b.WriteByte(';')
			}
			p.b.WriteString(d.Property)
			p.b.WriteByte(':')
			p.b.WriteString(d.Value)
		}
		p.b.WriteByte('}')
		return
	}

	p.indent()
	p.b.WriteString(selector)
	p.b.WriteString(" {\n")
	p.depth++
	for _, d := range decls {
		p.indent()
		p.b.WriteString(d.Property)
		p.b.WriteString(": ")
		p.b.WriteString(d.Value)
		p.b.WriteString(";\n")
	}
	p.depth--
	p.indent()
	p.b.WriteString("}\n")
}
