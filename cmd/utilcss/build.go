package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yacobolo/utilcss"
	"github.com/yacobolo/utilcss/internal/report"
	"github.com/yacobolo/utilcss/internal/scanner"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"gen"},
	Short:   "Generate the utility stylesheet from content files",
	Long: `Discover content files, scan them for utility classes and write the
stylesheet containing exactly the rules those classes use.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runBuild,
}

// errDiagnostics fails a strict build after the stylesheet was written.
var errDiagnostics = errors.New("unresolved utilities found")

func init() {
	addBuildFlags(buildCmd.Flags())
}

// addEngineFlags registers the flags that override top-level engine settings.
func addEngineFlags(f *pflag.FlagSet) {
	f.StringSlice("content", nil, "Glob patterns of content files to scan")
	f.String("prefix", "", "Class prefix, e.g. tw-")
	f.String("layer", "", "Wrap the output in @layer NAME")
	f.Bool("minify", false, "Emit minified CSS")
}

func addBuildFlags(f *pflag.FlagSet) {
	addEngineFlags(f)
	f.StringP("output", "o", defaultOutput, `Stylesheet path ("-" for stdout)`)
	f.String("snapshot", "", "Snapshot file used to skip unchanged content between builds")
	f.Bool("strict", false, "Exit 1 when any utility fails to resolve (CI mode)")
	f.Bool("print-lines", true, "Show source lines with diagnostics")
	f.Bool("print-linter-name", true, "Show (utilcss) suffix")
	f.Int("max-issues", 0, "Maximum diagnostics to show (0=unlimited)")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	settings := buildBuildSettings()
	logger := newLogger(cmd.ErrOrStderr(), settings.Verbose)

	cfg, err := buildEngineConfig()
	if err != nil {
		return err
	}
	eng, err := utilcss.Configure(cfg, utilcss.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("configure engine: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	res, stats, err := buildOnce(ctx, eng, cfg, settings, logger)
	if err != nil {
		return err
	}
	stats.Elapsed = time.Since(start)

	out := cmd.OutOrStdout()
	if settings.Output == "-" {
		if _, err := io.WriteString(out, res.CSS); err != nil {
			return fmt.Errorf("write stylesheet: %w", err)
		}
		// Reports go to stderr so stdout stays valid CSS.
		out = cmd.ErrOrStderr()
	} else if err := writeStylesheet(settings.Output, res.CSS); err != nil {
		return err
	}

	if !settings.Quiet {
		printReport(out, res.Diagnostics, stats, settings)
	}

	if settings.Strict && len(res.Diagnostics) > 0 {
		return fmt.Errorf("%w: %d", errDiagnostics, len(res.Diagnostics))
	}
	return nil
}

// buildOnce brings the engine in line with the content on disk: it restores
// the snapshot, drops sources that no longer match, scans everything else
// and saves the snapshot again.
func buildOnce(ctx context.Context, eng *utilcss.Engine, cfg utilcss.Config, settings buildSettings, logger *slog.Logger) (*utilcss.Result, report.BuildStats, error) {
	stats := report.BuildStats{Output: settings.Output}

	if settings.Snapshot != "" {
		if _, err := eng.LoadSnapshot(ctx, settings.Snapshot); err != nil {
			logger.Warn("ignoring snapshot", "path", settings.Snapshot, "error", err)
		}
	}

	files, ds, err := scanner.Discover(".", cfg.Content)
	if err != nil {
		return nil, stats, fmt.Errorf("discover content: %w", err)
	}
	stats.FilesDiscovered = ds.FilesDiscovered
	stats.FilesSkipped = ds.FilesSkipped

	found := make(map[string]bool, len(files))
	for _, path := range files {
		found[path] = true
	}
	for _, id := range eng.Sources() {
		if found[id] {
			continue
		}
		if _, err := eng.RemoveSource(ctx, id); err != nil && !errors.Is(err, utilcss.ErrSuperseded) {
			return nil, stats, err
		}
	}

	sources := make([]utilcss.Source, 0, len(files))
	for _, path := range files {
		src, err := scanner.ReadSource(path, logger)
		if err != nil {
			logger.Warn("skipping content file", "file", path, "error", err)
			stats.FilesSkipped++
			continue
		}
		sources = append(sources, utilcss.Source{ID: path, Text: src.Text})
	}

	res, err := eng.ScanAll(ctx, sources)
	if err != nil {
		return nil, stats, fmt.Errorf("scan content: %w", err)
	}
	stats.FilesUnchanged = res.Skipped
	stats.FilesScanned = len(sources) - res.Skipped
	stats.Rules = eng.RuleCount()
	stats.Diagnostics = len(res.Diagnostics)
	stats.Bytes = len(res.CSS)

	if settings.Snapshot != "" {
		if err := eng.SaveSnapshot(settings.Snapshot); err != nil {
			return nil, stats, err
		}
	}
	return res, stats, nil
}

// writeStylesheet writes css to path, creating parent directories.
func writeStylesheet(path, css string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(css), 0o644); err != nil {
		return fmt.Errorf("write stylesheet: %w", err)
	}
	return nil
}

func printReport(w io.Writer, diags []utilcss.Diagnostic, stats report.BuildStats, settings buildSettings) {
	reporter := report.NewReporter(w, report.Config{
		UseColors:        settings.Color,
		PrintIssuedLines: settings.PrintLines,
		PrintLinterName:  settings.PrintLinterName,
		MaxIssues:        settings.MaxIssues,
	})

	issues := toIssues(diags)
	if len(issues) > 0 {
		truncated := reporter.PrintIssues(issues)
		reporter.PrintSummary(issues, truncated)
	}

	verbose := report.NewVerboseReporter(w, reporter.UseColors())
	if stats.Output != "-" {
		verbose.PrintWritten(stats)
	}
	if settings.Verbose {
		verbose.PrintStatistics(stats)
	}
}

// toIssues converts engine diagnostics into printable issues.
func toIssues(diags []utilcss.Diagnostic) []report.Issue {
	issues := make([]report.Issue, 0, len(diags))
	for _, d := range diags {
		issue := report.Issue{
			FromLinter: report.LinterName,
			Text:       d.Message,
			Severity:   string(d.Severity),
			Pos: report.Pos{
				Filename: d.Source,
				Line:     d.Line,
				Column:   d.Column,
			},
		}
		if d.LineText != "" {
			issue.SourceLines = []string{d.LineText}
		}
		issues = append(issues, issue)
	}
	return issues
}

// newLogger logs to stderr, at debug level in verbose mode.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
