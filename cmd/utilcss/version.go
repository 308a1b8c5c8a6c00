package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/yacobolo/utilcss"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/utilcss
//
// Binaries installed with go install report their module version instead.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of utilcss",
	RunE: func(cmd *cobra.Command, _ []string) error {
		eng, err := utilcss.Configure(utilcss.Config{}, utilcss.WithLogger(newLogger(cmd.ErrOrStderr(), false)))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "utilcss %s (%s, default theme %s)\n", buildVersion(), runtime.Version(), eng.ThemeHash())
		return nil
	},
}

// buildVersion prefers the ldflags version, then the module version from
// the build info.
func buildVersion() string {
	if version != "dev" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return version
}
