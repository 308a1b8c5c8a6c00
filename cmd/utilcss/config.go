package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/utilcss"
)

const (
	defaultConfigPath     = ".utilcss.yaml"
	defaultTOMLConfigPath = ".utilcss.toml"
	defaultOutput         = "static/css/utilities.css"
)

var defaultContent = []string{
	"templates/**/*.html",
	"accounts/**/*.html",
	"candidate/**/*.html",
	"documents/**/*.html",
}

var (
	k = koanf.New(".")

	// rawDoc is the config file as parsed, before koanf flattens it.
	// Theme keys such as "0.5" contain the key delimiter, so the engine
	// configuration is built from this tree rather than from k.
	rawDoc map[string]any

	// changedFlags holds the flags set on the command line.
	changedFlags = map[string]bool{}
)

// engineKeys are the top-level engine settings that env vars and flags
// may override.
var engineKeys = []string{"content", "prefix", "separator", "important", "layer", "minify"}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") {
		configPath = defaultPath(configPath)
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// CLI flags (highest precedence)
	cmd.Flags().Visit(func(f *pflag.Flag) { changedFlags[f.Name] = true })
	if err := k.Load(posflag.Provider(cmd.Flags(), ".", k), nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}

	return nil
}

// defaultPath falls back to .utilcss.toml when the default YAML file is
// absent.
func defaultPath(path string) string {
	if path == "" {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(defaultTOMLConfigPath); err == nil && path == defaultConfigPath {
		return defaultTOMLConfigPath
	}
	return path
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	rawDoc = map[string]any{}

	// 1. Config file (lowest precedence among providers)
	if _, err := os.Stat(configPath); err == nil {
		parser := parserFor(configPath)
		if err := k.Load(file.Provider(configPath), parser); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}

		b, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading config file %s: %w", configPath, err)
		}
		if rawDoc, err = parser.Unmarshal(b); err != nil {
			return fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	// 2. Environment variables (UTILCSS_* prefix)
	if err := k.Load(env.Provider("UTILCSS_", ".", func(s string) string {
		// UTILCSS_BUILD_OUTPUT -> build.output
		// UTILCSS_MINIFY -> minify
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "UTILCSS_")),
			"_", ".",
		)
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}

	return nil
}

func parserFor(path string) koanf.Parser {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return TOMLParser()
	}
	return yaml.Parser()
}

// buildEngineConfig constructs the engine's Config from the config file
// tree, with env vars and flags layered over the top-level settings.
func buildEngineConfig() (utilcss.Config, error) {
	doc := make(map[string]any, len(rawDoc)+len(engineKeys))
	for key, v := range rawDoc {
		doc[key] = v
	}
	for _, key := range engineKeys {
		if changedFlags[key] || (k.Exists(key) && !isEmptyList(k.Get(key))) {
			doc[key] = k.Get(key)
		}
	}

	cfg, err := utilcss.ParseConfig(doc)
	if err != nil {
		return utilcss.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	if len(cfg.Content) == 0 {
		cfg.Content = append([]string(nil), defaultContent...)
	}
	return cfg, nil
}

func isEmptyList(v any) bool {
	switch l := v.(type) {
	case []string:
		return len(l) == 0
	case []any:
		return len(l) == 0
	}
	return false
}

// buildSettings are the host-side options of build and watch.
type buildSettings struct {
	Output          string
	Snapshot        string
	Strict          bool
	PrintLines      bool
	PrintLinterName bool
	MaxIssues       int
	Verbose         bool
	Quiet           bool
	Color           bool
}

func buildBuildSettings() buildSettings {
	return buildSettings{
		Output:          getStringWithFallback("output", "build.output", defaultOutput),
		Snapshot:        getStringWithFallback("snapshot", "build.snapshot", ""),
		Strict:          getBoolWithFallback("strict", "build.strict", false),
		PrintLines:      getBoolWithFallback("print-lines", "build.print-lines", true),
		PrintLinterName: getBoolWithFallback("print-linter-name", "build.print-linter-name", true),
		MaxIssues:       getIntWithFallback("max-issues", "build.max-issues", 0),
		Verbose:         getBoolWithFallback("verbose", "verbose", false),
		Quiet:           getBoolWithFallback("quiet", "quiet", false),
		Color:           getBoolWithFallback("color", "color", false),
	}
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if changedFlags[flagKey] {
		return k.String(flagKey)
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if changedFlags[flagKey] {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if changedFlags[flagKey] {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}

// getDurationWithFallback checks the flag key first, then the config file key, then returns the default.
func getDurationWithFallback(flagKey, configKey string, defaultVal time.Duration) time.Duration {
	if changedFlags[flagKey] {
		return k.Duration(flagKey)
	}
	if k.Exists(configKey) {
		return k.Duration(configKey)
	}
	return defaultVal
}
