// Package resolver maps utility tokens to CSS rules using a theme.
//
// Resolution is a pure function of the token and the theme, so results are
// memoized per Resolver. A Resolver is bound to one theme; a new theme
// means a new Resolver.
package resolver

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yacobolo/utilcss/internal/theme"
)

// DefaultMemoSize bounds the resolution memo when Options.MemoSize is zero.
const DefaultMemoSize = 8192

// Options configures a Resolver.
type Options struct {
	Separator string // variant separator, ":" when empty
	Prefix    string // class prefix stripped before lookup, e.g. "tw-"
	Important bool   // mark every declaration !important
	MemoSize  int
}

type memoEntry struct {
	rule *Rule
	ok   bool
}

// Resolver resolves tokens against a fixed theme. It is safe for
// concurrent use.
type Resolver struct {
	theme    *theme.Theme
	opts     Options
	builtins map[string][]theme.UtilityDef
	plugins  map[string][]theme.UtilityDef
	memo     *lru.Cache[string, memoEntry]
}

// New builds a resolver for t.
func New(t *theme.Theme, opts Options) (*Resolver, error) {
	if opts.Separator == "" {
		opts.Separator = ":"
	}
	if opts.MemoSize <= 0 {
		opts.MemoSize = DefaultMemoSize
	}
	memo, err := lru.New[string, memoEntry](opts.MemoSize)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		theme:    t,
		opts:     opts,
		builtins: index(builtinUtilities()),
		plugins:  index(t.Utilities()),
		memo:     memo,
	}
	return r, nil
}

func index(defs []theme.UtilityDef) map[string][]theme.UtilityDef {
	m := make(map[string][]theme.UtilityDef, len(defs))
	for _, d := range defs {
		m[d.Name] = append(m[d.Name], d)
	}
	return m
}

// Resolve maps token to a rule. It reports false for tokens that are not a
// known utility; that is never an error. The returned rule is shared and
// must not be modified.
func (r *Resolver) Resolve(token string) (*Rule, bool) {
	if e, ok := r.memo.Get(token); ok {
		return e.rule, e.ok
	}
	rule, ok := r.resolve(token)
	r.memo.Add(token, memoEntry{rule: rule, ok: ok})
	return rule, ok
}

// Diagnosable reports whether a token that failed to resolve was meant as
// a utility. Template expressions such as "accounts:login", words such as
// "e-mail" and CSS keywords such as "!important" are not: they use no known
// variant or utility name and carry no value.
func (r *Resolver) Diagnosable(token string) bool {
	if !LooksLikeUtility(token) {
		return false
	}
	d, ok := Parse(token, r.opts.Separator, r.opts.Prefix)
	if !ok {
		return strings.ContainsAny(token, "[]")
	}
	if len(d.Variants) > 0 {
		for _, v := range d.Variants {
			if _, _, ok := r.theme.Variant(v); ok {
				return true
			}
		}
		return false
	}
	if strings.ContainsAny(d.Base, "0123456789[]/") {
		return true
	}
	for _, split := range dashSplits(d.Base) {
		if len(r.builtins[split[0]]) > 0 || len(r.plugins[split[0]]) > 0 {
			return true
		}
	}
	return false
}

// Purge drops memoized resolutions.
func (r *Resolver) Purge() { r.memo.Purge() }

func (r *Resolver) resolve(token string) (*Rule, bool) {
	d, ok := Parse(token, r.opts.Separator, r.opts.Prefix)
	if !ok {
		return nil, false
	}

	decls, ok := r.declarations(d)
	if !ok || len(decls) == 0 {
		return nil, false
	}
	if d.Important || r.opts.Important {
		for i := range decls {
			if !strings.HasSuffix(decls[i].Value, "!important") {
				decls[i].Value += " !important"
			}
		}
	}

	// The last variant is innermost; the first written ends up outermost.
	sel := theme.BaseSelector()
	var rank uint64
	for i := len(d.Variants) - 1; i >= 0; i-- {
		def, vrank, ok := r.theme.Variant(d.Variants[i])
		if !ok {
			return nil, false
		}
		sel = def.Apply(sel)
		rank |= rankBit(vrank)
	}
	if !strings.Contains(sel.Template, theme.Placeholder) {
		return nil, false
	}

	return &Rule{
		Class:        token,
		Template:     sel.Template,
		Containers:   sel.Containers,
		Declarations: decls,
		Depth:        len(d.Variants),
		Rank:         rank,
	}, true
}

// declarations finds the utility for the base and returns a fresh copy of
// its declarations.
func (r *Resolver) declarations(d Descriptor) ([]theme.Declaration, bool) {
	if d.Base[0] == '[' {
		if d.Negative {
			return nil, false
		}
		prop, value, ok := parseArbitraryProperty(d.Base)
		if !ok {
			return nil, false
		}
		return []theme.Declaration{{Property: prop, Value: value}}, true
	}

	for _, split := range dashSplits(d.Base) {
		name, value := split[0], split[1]
		for _, table := range []map[string][]theme.UtilityDef{r.plugins, r.builtins} {
			for _, def := range table[name] {
				if decls, ok := r.apply(def, value, d.Negative); ok {
					return decls, true
				}
			}
		}
	}
	return nil, false
}

func (r *Resolver) apply(def theme.UtilityDef, value string, negative bool) ([]theme.Declaration, bool) {
	if value == "" && def.Static != nil {
		if negative {
			return nil, false
		}
		return append([]theme.Declaration(nil), def.Static...), true
	}
	if def.Generate == nil {
		return nil, false
	}

	c, ok := candidate(value, negative)
	if !ok {
		return nil, false
	}
	decls, ok := def.Generate(r.theme, c)
	if !ok {
		return nil, false
	}
	return append([]theme.Declaration(nil), decls...), true
}

// candidate builds the generator input for a value, decoding "[...]" and
// "[...]/modifier" forms.
func candidate(value string, negative bool) (theme.Candidate, bool) {
	c := theme.Candidate{Value: value, Negative: negative}
	if !strings.HasPrefix(value, "[") {
		if !strings.ContainsAny(value, "[]") {
			return c, true
		}
		// only an arbitrary opacity modifier may carry brackets: "red-500/[.35]"
		i := strings.Index(value, "/[")
		ok := i > 0 && strings.HasSuffix(value, "]") &&
			strings.Count(value, "[") == 1 && strings.Count(value, "]") == 1
		return c, ok
	}

	end := closingBracket(value)
	if end < 0 {
		return theme.Candidate{}, false
	}
	raw, rest := value[:end+1], value[end+1:]
	switch {
	case rest == "":
	case len(rest) > 1 && rest[0] == '/':
		c.Modifier = rest[1:]
	default:
		return theme.Candidate{}, false
	}

	decoded, hint, ok := decodeArbitrary(raw)
	if !ok {
		return theme.Candidate{}, false
	}
	c.Value, c.Hint, c.Arbitrary = decoded, hint, true
	return c, true
}

// closingBracket returns the index of the bracket closing value[0].
func closingBracket(value string) int {
	depth := 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
