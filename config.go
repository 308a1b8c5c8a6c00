package utilcss

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yacobolo/utilcss/internal/resolver"
	"github.com/yacobolo/utilcss/internal/theme"
)

// Config is the engine input.
type Config struct {
	// Content lists the glob patterns of files the host feeds the engine.
	// The engine itself never reads files.
	Content []string

	Theme   ThemeConfig
	Plugins []PluginConfig

	Prefix    string // class prefix, e.g. "tw-"
	Separator string // variant separator, ":" when empty
	Important bool   // mark every declaration !important

	Layer  string // wrap output in @layer when set
	Minify bool
}

// ThemeConfig customizes the default theme. Override replaces whole
// categories; Extend entries are deep-merged over the result in order.
type ThemeConfig struct {
	Override map[string]any
	Extend   []map[string]any
}

// PluginConfig is a declarative plugin.
type PluginConfig struct {
	Name      string
	Requires  []string
	Variants  map[string]string            // name -> "&:hover" template or "@media ..." prelude
	Utilities map[string]map[string]string // class -> property -> value
}

// ParseConfig builds a Config from a decoded configuration document (YAML,
// JSON or TOML). Unknown keys are ignored.
func ParseConfig(raw map[string]any) (Config, error) {
	var cfg Config
	var err error

	if cfg.Content, err = stringList(raw["content"], "content"); err != nil {
		return Config{}, err
	}
	for key, dst := range map[string]*string{
		"prefix":    &cfg.Prefix,
		"separator": &cfg.Separator,
		"layer":     &cfg.Layer,
	} {
		if *dst, err = stringValue(raw[key], key); err != nil {
			return Config{}, err
		}
	}
	for key, dst := range map[string]*bool{
		"important": &cfg.Important,
		"minify":    &cfg.Minify,
	} {
		if *dst, err = boolValue(raw[key], key); err != nil {
			return Config{}, err
		}
	}

	if v, ok := raw["theme"]; ok && v != nil {
		themeMap, ok := asMap(v)
		if !ok {
			return Config{}, &ConfigError{Path: "theme", Msg: fmt.Sprintf("expected an object, got %T", v)}
		}
		if cfg.Theme, err = parseTheme(themeMap); err != nil {
			return Config{}, err
		}
	}

	if v, ok := raw["plugins"]; ok && v != nil {
		list, ok := v.([]any)
		if !ok {
			return Config{}, &ConfigError{Path: "plugins", Msg: fmt.Sprintf("expected a list, got %T", v)}
		}
		for i, item := range list {
			p, err := parsePlugin(item, i)
			if err != nil {
				return Config{}, err
			}
			cfg.Plugins = append(cfg.Plugins, p)
		}
	}

	return cfg, nil
}

func parseTheme(m map[string]any) (ThemeConfig, error) {
	var tc ThemeConfig
	for k, v := range m {
		if k != "extend" {
			if tc.Override == nil {
				tc.Override = make(map[string]any)
			}
			tc.Override[k] = v
			continue
		}
		switch ext := v.(type) {
		case nil:
		case []any:
			for i, item := range ext {
				em, ok := asMap(item)
				if !ok {
					return ThemeConfig{}, &ConfigError{Path: fmt.Sprintf("theme.extend[%d]", i), Msg: "expected an object"}
				}
				tc.Extend = append(tc.Extend, em)
			}
		default:
			em, ok := asMap(ext)
			if !ok {
				return ThemeConfig{}, &ConfigError{Path: "theme.extend", Msg: fmt.Sprintf("expected an object, got %T", v)}
			}
			if len(em) > 0 {
				tc.Extend = append(tc.Extend, em)
			}
		}
	}
	return tc, nil
}

func parsePlugin(item any, i int) (PluginConfig, error) {
	path := fmt.Sprintf("plugins[%d]", i)
	m, ok := asMap(item)
	if !ok {
		return PluginConfig{}, &ConfigError{Path: path, Msg: "expected an object"}
	}

	var p PluginConfig
	var err error
	if p.Name, err = stringValue(m["name"], path+".name"); err != nil {
		return PluginConfig{}, err
	}
	if p.Name == "" {
		return PluginConfig{}, &ConfigError{Path: path + ".name", Msg: "plugin name is required"}
	}
	if p.Requires, err = stringList(m["requires"], path+".requires"); err != nil {
		return PluginConfig{}, err
	}

	if v, ok := m["variants"]; ok && v != nil {
		vm, ok := asMap(v)
		if !ok {
			return PluginConfig{}, &ConfigError{Path: path + ".variants", Msg: "expected an object"}
		}
		p.Variants = make(map[string]string, len(vm))
		for name, def := range vm {
			if p.Variants[name], err = stringValue(def, path+".variants."+name); err != nil {
				return PluginConfig{}, err
			}
		}
	}

	if v, ok := m["utilities"]; ok && v != nil {
		um, ok := asMap(v)
		if !ok {
			return PluginConfig{}, &ConfigError{Path: path + ".utilities", Msg: "expected an object"}
		}
		p.Utilities = make(map[string]map[string]string, len(um))
		for class, props := range um {
			pm, ok := asMap(props)
			if !ok {
				return PluginConfig{}, &ConfigError{Path: path + ".utilities." + class, Msg: "expected an object of declarations"}
			}
			decls := make(map[string]string, len(pm))
			for prop, val := range pm {
				s, err := leafString(val)
				if err != nil {
					return PluginConfig{}, &ConfigError{Path: path + ".utilities." + class + "." + prop, Msg: err.Error()}
				}
				decls[prop] = s
			}
			p.Utilities[class] = decls
		}
	}
	return p, nil
}

// themeOptions converts the configuration into theme construction options.
func (c Config) themeOptions(extra []theme.Plugin) (theme.Options, error) {
	opts := theme.Options{}
	if len(c.Theme.Override) > 0 {
		opts.Override = theme.Normalize(c.Theme.Override)
	}
	for _, ext := range c.Theme.Extend {
		opts.Extend = append(opts.Extend, theme.Normalize(ext))
	}
	for _, pc := range c.Plugins {
		p, err := theme.NewStaticPlugin(pc.Name, pc.Requires, pc.Variants, pc.Utilities)
		if err != nil {
			return theme.Options{}, err
		}
		opts.Plugins = append(opts.Plugins, p)
	}
	opts.Plugins = append(opts.Plugins, extra...)
	return opts, nil
}

func (c Config) resolverOptions(memoSize int) resolver.Options {
	return resolver.Options{
		Separator: c.Separator,
		Prefix:    c.Prefix,
		Important: c.Important,
		MemoSize:  memoSize,
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case theme.Tree:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func stringValue(v any, path string) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	}
	return "", &ConfigError{Path: path, Msg: fmt.Sprintf("expected a string, got %T", v)}
}

func boolValue(v any, path string) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no", "":
			return false, nil
		}
	}
	return false, &ConfigError{Path: path, Msg: fmt.Sprintf("expected a boolean, got %v", v)}
}

// stringList accepts a list of strings or a single comma separated string.
func stringList(v any, path string) ([]string, error) {
	switch l := v.(type) {
	case nil:
		return nil, nil
	case string:
		var out []string
		for _, s := range strings.Split(l, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case []string:
		return append([]string(nil), l...), nil
	case []any:
		out := make([]string, 0, len(l))
		for i, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, &ConfigError{Path: fmt.Sprintf("%s[%d]", path, i), Msg: fmt.Sprintf("expected a string, got %T", item)}
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, &ConfigError{Path: path, Msg: fmt.Sprintf("expected a list of strings, got %T", v)}
}

func leafString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int, int64, float64, uint64:
		return fmt.Sprint(s), nil
	}
	return "", fmt.Errorf("expected a string value, got %T", v)
}

// pluginNames lists configured plugin names, sorted, for logging.
func (c Config) pluginNames() []string {
	names := make([]string, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
