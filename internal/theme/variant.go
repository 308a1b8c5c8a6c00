package theme

import (
	"fmt"
	"strings"
)

// Placeholder marks where the utility's own class selector goes in a
// selector template.
const Placeholder = "&"

// Selector is the selector context a utility is emitted under.
type Selector struct {
	Template   string   // e.g. ".group:hover &:focus"
	Containers []string // at-rule preludes, outermost first
}

// BaseSelector is the context of a utility without variants.
func BaseSelector() Selector {
	return Selector{Template: Placeholder}
}

// VariantFunc transforms a selector context. It must not mutate its input.
type VariantFunc func(Selector) Selector

// VariantDef names a variant and its transform.
type VariantDef struct {
	Name  string
	Apply VariantFunc
}

// SelectorVariant wraps the current template into tpl, which must contain
// the placeholder ("&:hover", ".dark &", "&::placeholder").
func SelectorVariant(tpl string) VariantFunc {
	return func(s Selector) Selector {
		return Selector{
			Template:   strings.ReplaceAll(tpl, Placeholder, s.Template),
			Containers: append([]string(nil), s.Containers...),
		}
	}
}

// PseudoVariant appends a pseudo-class or pseudo-element to the selector.
func PseudoVariant(pseudo string) VariantFunc {
	return SelectorVariant(Placeholder + pseudo)
}

// AtRuleVariant nests the rule inside an at-rule such as "@media (min-width: 768px)".
// Variants applied later become outer containers.
func AtRuleVariant(prelude string) VariantFunc {
	return func(s Selector) Selector {
		containers := make([]string, 0, len(s.Containers)+1)
		containers = append(containers, prelude)
		containers = append(containers, s.Containers...)
		return Selector{Template: s.Template, Containers: containers}
	}
}

// ParseVariant builds a transform from its textual form: a string starting
// with "@" is an at-rule prelude, anything else a selector template.
func ParseVariant(name, def string) (VariantDef, error) {
	def = strings.TrimSpace(def)
	switch {
	case def == "":
		return VariantDef{}, &ConfigError{Path: "variants." + name, Msg: "empty variant definition"}
	case strings.HasPrefix(def, "@"):
		return VariantDef{Name: name, Apply: AtRuleVariant(def)}, nil
	case strings.Contains(def, Placeholder):
		return VariantDef{Name: name, Apply: SelectorVariant(def)}, nil
	default:
		return VariantDef{}, &ConfigError{
			Path: "variants." + name,
			Msg:  fmt.Sprintf("selector template %q must contain %q", def, Placeholder),
		}
	}
}

// defaultVariants lists the built-in variants in cascade order. Screens are
// appended after these so responsive rules follow state rules.
func defaultVariants() []VariantDef {
	pseudo := []struct{ name, pseudo string }{
		{"first", ":first-child"},
		{"last", ":last-child"},
		{"odd", ":nth-child(odd)"},
		{"even", ":nth-child(even)"},
		{"visited", ":visited"},
		{"checked", ":checked"},
		{"focus-within", ":focus-within"},
		{"hover", ":hover"},
		{"focus", ":focus"},
		{"focus-visible", ":focus-visible"},
		{"active", ":active"},
		{"disabled", ":disabled"},
		{"required", ":required"},
		{"invalid", ":invalid"},
		{"placeholder", "::placeholder"},
		{"before", "::before"},
		{"after", "::after"},
	}

	defs := make([]VariantDef, 0, len(pseudo)+10)
	for _, p := range pseudo {
		defs = append(defs, VariantDef{Name: p.name, Apply: PseudoVariant(p.pseudo)})
	}

	defs = append(defs,
		VariantDef{Name: "group-hover", Apply: SelectorVariant(".group:hover &")},
		VariantDef{Name: "group-focus", Apply: SelectorVariant(".group:focus &")},
		VariantDef{Name: "peer-hover", Apply: SelectorVariant(".peer:hover ~ &")},
		VariantDef{Name: "peer-focus", Apply: SelectorVariant(".peer:focus ~ &")},
		VariantDef{Name: "motion-safe", Apply: AtRuleVariant("@media (prefers-reduced-motion: no-preference)")},
		VariantDef{Name: "motion-reduce", Apply: AtRuleVariant("@media (prefers-reduced-motion: reduce)")},
		VariantDef{Name: "print", Apply: AtRuleVariant("@media print")},
		VariantDef{Name: "dark", Apply: AtRuleVariant("@media (prefers-color-scheme: dark)")},
	)
	return defs
}
