package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/utilcss"
)

// resetKoanf creates a fresh koanf instance for each test.
func resetKoanf() {
	k = koanf.New(".")
	rawDoc = map[string]any{}
	changedFlags = map[string]bool{}
}

// chdir switches to dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigFileLoading(t *testing.T) {
	resetKoanf()

	configPath := writeConfig(t, ".utilcss.yaml", `
content:
  - "templates/**/*.html"
prefix: tw-
minify: true
verbose: true

build:
  output: public/app.css
  strict: true
  max-issues: 10
`)
	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "tw-", k.String("prefix"))
	assert.True(t, k.Bool("verbose"))
	assert.Equal(t, "public/app.css", k.String("build.output"))
	assert.True(t, k.Bool("build.strict"))
	assert.Equal(t, 10, k.Int("build.max-issues"))

	settings := buildBuildSettings()
	assert.Equal(t, "public/app.css", settings.Output)
	assert.True(t, settings.Strict)
	assert.Equal(t, 10, settings.MaxIssues)
	assert.True(t, settings.Verbose)

	cfg, err := buildEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"templates/**/*.html"}, cfg.Content)
	assert.Equal(t, "tw-", cfg.Prefix)
	assert.True(t, cfg.Minify)
}

func TestConfigFileNotFound_UsesDefaults(t *testing.T) {
	resetKoanf()

	// Point to non-existent config, should not error
	require.NoError(t, loadConfigFromPath("/nonexistent/.utilcss.yaml"))

	settings := buildBuildSettings()
	assert.Equal(t, defaultOutput, settings.Output)
	assert.Empty(t, settings.Snapshot)
	assert.False(t, settings.Strict)
	assert.True(t, settings.PrintLines)
	assert.True(t, settings.PrintLinterName)
	assert.Equal(t, 0, settings.MaxIssues)

	cfg, err := buildEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, defaultContent, cfg.Content)
	assert.False(t, cfg.Minify)
	assert.Empty(t, cfg.Prefix)
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	resetKoanf()

	configPath := writeConfig(t, ".utilcss.yaml", `
minify: false
build:
  output: from-file.css
`)

	// Set env vars that should override config file
	t.Setenv("UTILCSS_BUILD_OUTPUT", "from-env.css")
	t.Setenv("UTILCSS_MINIFY", "true")
	t.Setenv("UTILCSS_CONTENT", "a/**/*.html,b/**/*.html")

	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "from-env.css", buildBuildSettings().Output)

	cfg, err := buildEngineConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Minify)
	assert.Equal(t, []string{"a/**/*.html", "b/**/*.html"}, cfg.Content)
}

func TestTOMLConfig(t *testing.T) {
	resetKoanf()

	configPath := writeConfig(t, ".utilcss.toml", `
content = ["pages/**/*.html"]
layer = "utilities"

[theme.extend.spacing]
"7" = "1.75rem"

[build]
output = "dist/site.css"
`)
	require.NoError(t, loadConfigFromPath(configPath))

	assert.Equal(t, "dist/site.css", buildBuildSettings().Output)

	cfg, err := buildEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"pages/**/*.html"}, cfg.Content)
	assert.Equal(t, "utilities", cfg.Layer)
	require.Len(t, cfg.Theme.Extend, 1)
	assert.Equal(t, map[string]any{"7": "1.75rem"}, cfg.Theme.Extend[0]["spacing"])
}

func TestThemeKeysWithDotsSurvive(t *testing.T) {
	resetKoanf()

	configPath := writeConfig(t, ".utilcss.yaml", `
theme:
  extend:
    spacing:
      "0.5": 0.125rem
      "13": 3.25rem
plugins:
  - name: buttons
    utilities:
      btn:
        padding: 1rem
`)
	require.NoError(t, loadConfigFromPath(configPath))

	cfg, err := buildEngineConfig()
	require.NoError(t, err)
	require.Len(t, cfg.Theme.Extend, 1)
	assert.Equal(t, map[string]any{"0.5": "0.125rem", "13": "3.25rem"}, cfg.Theme.Extend[0]["spacing"])
	require.Len(t, cfg.Plugins, 1)
	assert.Equal(t, "buttons", cfg.Plugins[0].Name)
	assert.Equal(t, map[string]string{"padding": "1rem"}, cfg.Plugins[0].Utilities["btn"])

	eng, err := utilcss.Configure(cfg)
	require.NoError(t, err)
	text := `<div class="p-0.5 p-13 btn">`
	res, err := eng.OnSourceChanged(t.Context(), "index.html", &text)
	require.NoError(t, err)
	assert.Contains(t, res.CSS, "padding: 0.125rem;")
	assert.Contains(t, res.CSS, "padding: 3.25rem;")
	assert.Contains(t, res.CSS, ".btn {")
}

func TestInvalidConfigIsReported(t *testing.T) {
	resetKoanf()

	configPath := writeConfig(t, ".utilcss.yaml", `
theme: [1, 2]
`)
	require.NoError(t, loadConfigFromPath(configPath))

	_, err := buildEngineConfig()
	require.Error(t, err)
	var cfgErr *utilcss.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "theme", cfgErr.Path)
}

func TestDefaultPathFallsBackToTOML(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	assert.Equal(t, defaultConfigPath, defaultPath(""))

	require.NoError(t, os.WriteFile(defaultTOMLConfigPath, []byte(`minify = true`), 0o644))
	assert.Equal(t, defaultTOMLConfigPath, defaultPath(defaultConfigPath))
	assert.Equal(t, "custom.yaml", defaultPath("custom.yaml"))

	require.NoError(t, os.WriteFile(defaultConfigPath, []byte(`minify: true`), 0o644))
	assert.Equal(t, defaultConfigPath, defaultPath(defaultConfigPath))
}

func TestGetWithFallback_FlagBeatsConfig(t *testing.T) {
	resetKoanf()

	configPath := writeConfig(t, ".utilcss.yaml", `
build:
  output: from-file.css
  max-issues: 3
`)
	require.NoError(t, loadConfigFromPath(configPath))

	// Only flags present in changedFlags count as set.
	require.NoError(t, k.Set("output", defaultOutput))
	assert.Equal(t, "from-file.css", getStringWithFallback("output", "build.output", defaultOutput))

	changedFlags["output"] = true
	require.NoError(t, k.Set("output", "from-flag.css"))
	assert.Equal(t, "from-flag.css", getStringWithFallback("output", "build.output", defaultOutput))

	assert.Equal(t, 3, getIntWithFallback("max-issues", "build.max-issues", 0))
	assert.Equal(t, 7, getIntWithFallback("missing", "build.missing", 7))
}
