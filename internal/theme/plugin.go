package theme

import (
	"fmt"
	"sort"
	"strings"
)

// Declaration is a single CSS property/value pair.
type Declaration struct {
	Property string
	Value    string
}

// Candidate is the value part of a utility token handed to a generator.
type Candidate struct {
	Value     string // "4", "red-500", "1/2"; for arbitrary values the decoded interior
	Arbitrary bool   // value came from [brackets]
	Hint      string // data type hint from [hint:value], e.g. "length"
	Negative  bool   // token had a leading "-"
	Modifier  string // modifier split off an arbitrary value ("[#fff]/50")
}

// SplitModifier splits "red-500/50" into "red-500" and "50". Arbitrary
// modifiers keep their brackets ("[.35]").
func (c Candidate) SplitModifier() (value, modifier string, ok bool) {
	if c.Modifier != "" {
		return c.Value, c.Modifier, true
	}
	if c.Arbitrary {
		return c.Value, "", false
	}
	i := strings.LastIndexByte(c.Value, '/')
	if i <= 0 || i == len(c.Value)-1 {
		return c.Value, "", false
	}
	return c.Value[:i], c.Value[i+1:], true
}

// UtilityFunc produces the declarations for a candidate, or false when the
// candidate's value is not valid for the utility.
type UtilityFunc func(t *Theme, c Candidate) ([]Declaration, bool)

// UtilityDef registers a utility under Name. Static declarations apply to the
// bare name; Generate handles valued forms ("name-value", "name-[arbitrary]").
type UtilityDef struct {
	Name     string
	Static   []Declaration
	Generate UtilityFunc
}

// Plugin contributes variants and utilities. Requires names plugins that must
// be registered first.
type Plugin interface {
	Name() string
	Requires() []string
	RegisterVariants() []VariantDef
	RegisterUtilities() []UtilityDef
}

// StaticPlugin is a declarative plugin: variants given as templates and
// utilities given as fixed declaration tables.
type StaticPlugin struct {
	PluginName   string
	Dependencies []string
	Variants     []VariantDef
	Utilities    []UtilityDef
}

func (p *StaticPlugin) Name() string                    { return p.PluginName }
func (p *StaticPlugin) Requires() []string              { return p.Dependencies }
func (p *StaticPlugin) RegisterVariants() []VariantDef  { return p.Variants }
func (p *StaticPlugin) RegisterUtilities() []UtilityDef { return p.Utilities }

// NewStaticPlugin builds a declarative plugin. Variant definitions use the
// ParseVariant syntax; utility declarations are emitted sorted by property.
func NewStaticPlugin(name string, requires []string, variants map[string]string, utilities map[string]map[string]string) (*StaticPlugin, error) {
	if name == "" {
		return nil, &ConfigError{Path: "plugins", Msg: "plugin name is required"}
	}

	p := &StaticPlugin{PluginName: name, Dependencies: append([]string(nil), requires...)}

	for _, vname := range sortedKeys(variants) {
		def, err := ParseVariant(vname, variants[vname])
		if err != nil {
			var cfgErr *ConfigError
			if asConfigError(err, &cfgErr) {
				cfgErr.Path = "plugins." + name + "." + cfgErr.Path
			}
			return nil, err
		}
		p.Variants = append(p.Variants, def)
	}

	for _, uname := range sortedKeys(utilities) {
		props := utilities[uname]
		if len(props) == 0 {
			return nil, &ConfigError{Path: "plugins." + name + ".utilities." + uname, Msg: "utility has no declarations"}
		}
		def := UtilityDef{Name: uname}
		for _, prop := range sortedKeys(props) {
			def.Static = append(def.Static, Declaration{Property: prop, Value: props[prop]})
		}
		p.Utilities = append(p.Utilities, def)
	}

	return p, nil
}

// orderPlugins sorts plugins so every plugin follows its requirements while
// otherwise keeping declaration order.
func orderPlugins(plugins []Plugin) ([]Plugin, error) {
	byName := make(map[string]int, len(plugins))
	for i, p := range plugins {
		if _, dup := byName[p.Name()]; dup {
			return nil, &ConfigError{Path: "plugins", Msg: fmt.Sprintf("plugin %q registered twice", p.Name())}
		}
		byName[p.Name()] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(plugins))
	ordered := make([]Plugin, 0, len(plugins))

	var visit func(i int, chain []string) error
	visit = func(i int, chain []string) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return &ConfigError{
				Path: "plugins",
				Msg:  fmt.Sprintf("circular plugin dependency: %s", strings.Join(append(chain, plugins[i].Name()), " -> ")),
			}
		}
		state[i] = visiting
		for _, dep := range plugins[i].Requires() {
			j, ok := byName[dep]
			if !ok {
				return &ConfigError{
					Path: "plugins." + plugins[i].Name(),
					Msg:  fmt.Sprintf("requires unknown plugin %q", dep),
				}
			}
			if err := visit(j, append(chain, plugins[i].Name())); err != nil {
				return err
			}
		}
		state[i] = done
		ordered = append(ordered, plugins[i])
		return nil
	}

	for i := range plugins {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
