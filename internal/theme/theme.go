// Package theme holds the design-token model: a default token tree merged
// with user overrides and extensions, the registered variants and the
// plugin-contributed utilities. A Theme is immutable once built and safe for
// concurrent use.
package theme

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Options configures New.
type Options struct {
	// Override replaces whole categories of the base tree ("theme.colors").
	Override Tree
	// Extend entries are deep-merged in order after overrides ("theme.extend").
	Extend []Tree
	// Plugins contribute variants and utilities, ordered by their requirements.
	Plugins []Plugin
}

type variantEntry struct {
	def  VariantDef
	rank int
}

// Theme is the resolved token tree plus the variant and utility registries.
type Theme struct {
	tree      Tree
	variants  map[string]variantEntry
	order     []string
	utilities []UtilityDef
	plugins   []string
	nextRank  int
	hash      string
}

// categoryFallbacks maps a category to the one consulted when a key is
// missing, mirroring how width/padding/... share the spacing scale.
var categoryFallbacks = map[string]string{
	"padding":         "spacing",
	"margin":          "spacing",
	"gap":             "spacing",
	"inset":           "spacing",
	"width":           "spacing",
	"height":          "spacing",
	"size":            "spacing",
	"translate":       "spacing",
	"flexBasis":       "spacing",
	"maxHeight":       "spacing",
	"backgroundColor": "colors",
	"textColor":       "colors",
	"borderColor":     "colors",
	"fill":            "colors",
	"stroke":          "colors",
}

// New builds a theme from base (Defaults() when nil) and opts.
func New(base Tree, opts Options) (*Theme, error) {
	if base == nil {
		base = Defaults()
	}
	tree := base.Clone()

	for _, k := range opts.Override.Keys() {
		tree[k] = normalize(opts.Override[k])
	}
	for _, ext := range opts.Extend {
		Merge(tree, ext.Clone())
	}

	if err := resolveReferences(tree); err != nil {
		return nil, err
	}

	t := &Theme{
		tree:     tree,
		variants: make(map[string]variantEntry),
	}

	for _, def := range defaultVariants() {
		t.registerVariant(def)
	}

	screens, err := t.screens()
	if err != nil {
		return nil, err
	}
	for _, s := range screens {
		t.registerVariant(VariantDef{Name: s.name, Apply: AtRuleVariant("@media (min-width: " + s.value + ")")})
	}

	plugins, err := orderPlugins(opts.Plugins)
	if err != nil {
		return nil, err
	}
	for _, p := range plugins {
		t.plugins = append(t.plugins, p.Name())
		for _, def := range p.RegisterVariants() {
			if def.Name == "" || def.Apply == nil {
				return nil, &ConfigError{Path: "plugins." + p.Name(), Msg: "variant needs a name and a transform"}
			}
			t.registerVariant(def)
		}
		for _, def := range p.RegisterUtilities() {
			if def.Name == "" || (def.Static == nil && def.Generate == nil) {
				return nil, &ConfigError{Path: "plugins." + p.Name(), Msg: "utility needs a name and declarations"}
			}
			t.utilities = append(t.utilities, def)
		}
	}

	t.hash, err = t.computeHash()
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Theme) registerVariant(def VariantDef) {
	if _, exists := t.variants[def.Name]; !exists {
		t.order = append(t.order, def.Name)
	}
	t.variants[def.Name] = variantEntry{def: def, rank: t.nextRank}
	t.nextRank++
}

type screen struct {
	name  string
	value string
	px    float64
}

// screens returns the breakpoints ordered by width, narrowest first.
func (t *Theme) screens() ([]screen, error) {
	raw, ok := t.tree["screens"]
	if !ok {
		return nil, nil
	}
	node, ok := raw.(Tree)
	if !ok {
		return nil, &ConfigError{Path: "screens", Msg: "must be an object of breakpoint widths"}
	}

	out := make([]screen, 0, len(node))
	for _, name := range node.Keys() {
		value, ok := node[name].(string)
		if !ok {
			return nil, &ConfigError{Path: "screens." + name, Msg: "breakpoint must be a width string"}
		}
		px, err := cssLengthToPx(value)
		if err != nil {
			return nil, &ConfigError{Path: "screens." + name, Msg: err.Error()}
		}
		out = append(out, screen{name: name, value: value, px: px})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].px != out[j].px {
			return out[i].px < out[j].px
		}
		return out[i].name < out[j].name
	})
	return out, nil
}

func cssLengthToPx(v string) (float64, error) {
	v = strings.TrimSpace(v)
	unit := strings.TrimLeft(v, "0123456789.")
	num, err := strconv.ParseFloat(strings.TrimSuffix(v, unit), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid breakpoint width %q", v)
	}
	switch unit {
	case "px", "":
		return num, nil
	case "em", "rem":
		return num * 16, nil
	default:
		return 0, fmt.Errorf("unsupported breakpoint unit in %q", v)
	}
}

type variantPrint struct {
	Name       string   `json:"name"`
	Template   string   `json:"template"`
	Containers []string `json:"containers,omitempty"`
}

type utilityPrint struct {
	Name      string        `json:"name"`
	Static    []Declaration `json:"static,omitempty"`
	Generated bool          `json:"generated,omitempty"`
}

// computeHash covers the tree, what each variant does to a bare selector
// and every plugin utility. Generators are opaque and only count by name.
func (t *Theme) computeHash() (string, error) {
	variants := make([]variantPrint, 0, len(t.order))
	for _, name := range t.order {
		vp := variantPrint{Name: name}
		if def := t.variants[name].def; def.Apply != nil {
			sel := def.Apply(BaseSelector())
			vp.Template, vp.Containers = sel.Template, sel.Containers
		}
		variants = append(variants, vp)
	}
	utilities := make([]utilityPrint, 0, len(t.utilities))
	for _, u := range t.utilities {
		utilities = append(utilities, utilityPrint{Name: u.Name, Static: u.Static, Generated: u.Generate != nil})
	}

	b, err := json.Marshal(struct {
		Tree      Tree           `json:"tree"`
		Variants  []variantPrint `json:"variants"`
		Utilities []utilityPrint `json:"utilities"`
		Plugins   []string       `json:"plugins"`
	}{t.tree, variants, utilities, t.plugins})
	if err != nil {
		return "", fmt.Errorf("hash theme: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:16], nil
}

// Hash identifies the theme's content; equal configurations hash equally.
func (t *Theme) Hash() string { return t.hash }

// Resolve walks exact keys from the root ("colors", "red", "500").
func (t *Theme) Resolve(path ...string) (Value, bool) {
	var node any = t.tree
	for _, key := range path {
		tree, ok := node.(Tree)
		if !ok {
			return Value{}, false
		}
		node, ok = tree[key]
		if !ok {
			return Value{}, false
		}
	}
	return Value{raw: node}, true
}

// Lookup resolves a utility value within a category. Dashes in key may
// denote nesting ("red-500") and an empty key or a nested object selects its
// DEFAULT entry. Categories with a fallback consult it when the key is missing.
func (t *Theme) Lookup(category, key string) (Value, bool) {
	if key == "" {
		key = "DEFAULT"
	}
	for category != "" {
		if entry, ok := t.Resolve(category); ok {
			node, _ := entry.Tree()
			if v, ok := lookupDashed(node, key); ok {
				if nested, isTree := v.(Tree); isTree {
					if def, hasDefault := nested["DEFAULT"]; hasDefault {
						v = def
					}
				}
				return Value{raw: v}, true
			}
		}
		category = categoryFallbacks[category]
	}
	return Value{}, false
}

// Variant returns the variant registered under name and its cascade rank.
func (t *Theme) Variant(name string) (VariantDef, int, bool) {
	e, ok := t.variants[name]
	return e.def, e.rank, ok
}

// VariantNames lists registered variants in registration order.
func (t *Theme) VariantNames() []string {
	return append([]string(nil), t.order...)
}

// Utilities returns the plugin-contributed utilities in registration order.
func (t *Theme) Utilities() []UtilityDef {
	return append([]UtilityDef(nil), t.utilities...)
}

// Value is a theme entry: a string leaf, a list or a nested object.
type Value struct {
	raw any
}

// Leaf returns the entry as a single CSS value. Lists yield their first
// element, as font sizes do ("sm" -> ["0.875rem", "1.25rem"]).
func (v Value) Leaf() (string, bool) {
	switch val := v.raw.(type) {
	case string:
		return val, true
	case []any:
		if len(val) == 0 {
			return "", false
		}
		s, ok := val[0].(string)
		return s, ok
	default:
		return "", false
	}
}

// List returns the entry as a list of string leaves.
func (v Value) List() ([]string, bool) {
	switch val := v.raw.(type) {
	case string:
		return []string{val}, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// Tree returns the entry as a nested object.
func (v Value) Tree() (Tree, bool) {
	t, ok := v.raw.(Tree)
	return t, ok
}
