package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .utilcss.yaml config file",
	Long:  `Create a .utilcss.yaml configuration file in the current directory with sensible defaults.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(defaultConfigPath); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigPath)
		}

		if err := os.WriteFile(defaultConfigPath, []byte(defaultConfig), 0o644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", defaultConfigPath)
		return nil
	},
}

const defaultConfig = `# utilcss configuration

# Files scanned for utility classes
content:
  - "templates/**/*.html"
  - "accounts/**/*.html"
  - "candidate/**/*.html"
  - "documents/**/*.html"

theme:
  extend: {}

plugins: []

# prefix: "tw-"
# separator: ":"
important: false
minify: false
# layer: utilities

build:
  output: static/css/utilities.css
  snapshot: ""             # e.g. .utilcss-cache.json to skip unchanged files
  strict: false
  max-issues: 0            # 0 = unlimited
  print-lines: true
  print-linter-name: true

watch:
  debounce: 100ms
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
