package main

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yacobolo/utilcss"
)

func TestVersionCommand(t *testing.T) {
	saved := version
	version = "1.2.3"
	t.Cleanup(func() { version = saved })

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	hash := newEngine(t, utilcss.Config{}).ThemeHash()
	assert.Equal(t, "utilcss 1.2.3 ("+runtime.Version()+", default theme "+hash+")\n", out.String())
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out bytes.Buffer
			completionCmd.SetOut(&out)
			t.Cleanup(func() { completionCmd.SetOut(nil) })

			require.NoError(t, completionCmd.RunE(completionCmd, []string{shell}))
			assert.Contains(t, out.String(), "utilcss")
		})
	}
}

func TestFlagCompletions(t *testing.T) {
	for _, cmd := range []*cobra.Command{rootCmd, buildCmd, watchCmd} {
		t.Run(cmd.Name(), func(t *testing.T) {
			output := cmd.Flags().Lookup("output")
			require.NotNil(t, output)
			assert.Equal(t, []string{"css"}, output.Annotations[cobra.BashCompFilenameExt])

			snapshot := cmd.Flags().Lookup("snapshot")
			require.NotNil(t, snapshot)
			assert.Equal(t, []string{"json"}, snapshot.Annotations[cobra.BashCompFilenameExt])
		})
	}

	config := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, config)
	assert.Equal(t, []string{"yaml", "yml", "toml"}, config.Annotations[cobra.BashCompFilenameExt])

	layers, directive := completeLayer(buildCmd, nil, "")
	assert.Equal(t, []string{"utilities", "components", "base"}, layers)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}
