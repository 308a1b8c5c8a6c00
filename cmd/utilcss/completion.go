package main

import (
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion scripts",
	Long:      `Generate shell completion scripts for utilcss commands and flags.`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

// layerSuggestions are the cascade layers a generated stylesheet usually
// goes into.
var layerSuggestions = []string{"utilities", "components", "base"}

// registerCompletions adds flag value completions. It runs once every
// command has registered its flags.
func registerCompletions() {
	_ = rootCmd.MarkPersistentFlagFilename("config", "yaml", "yml", "toml")
	for _, cmd := range []*cobra.Command{rootCmd, buildCmd, watchCmd} {
		_ = cmd.MarkFlagFilename("output", "css")
		_ = cmd.MarkFlagFilename("snapshot", "json")
		_ = cmd.RegisterFlagCompletionFunc("layer", completeLayer)
	}
}

func completeLayer(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return layerSuggestions, cobra.ShellCompDirectiveNoFileComp
}
