package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yacobolo/utilcss"
	"github.com/yacobolo/utilcss/internal/report"
	"github.com/yacobolo/utilcss/internal/scanner"
	"github.com/yacobolo/utilcss/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the stylesheet whenever content files change",
	Long: `Run a full build, then watch the content directories and update the
stylesheet incrementally as files are written, created or removed.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return loadConfig(cmd)
	},
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	addBuildFlags(f)
	f.Duration("debounce", watch.DefaultDebounce, "Quiet period before a changed file is rescanned")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	settings := buildBuildSettings()
	if settings.Output == "-" {
		return fmt.Errorf("watch needs an output file")
	}
	logger := newLogger(cmd.ErrOrStderr(), settings.Verbose)

	cfg, err := buildEngineConfig()
	if err != nil {
		return err
	}
	eng, err := utilcss.Configure(cfg, utilcss.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("configure engine: %w", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, stats, err := buildOnce(ctx, eng, cfg, settings, logger)
	if err != nil {
		return err
	}
	if err := writeStylesheet(settings.Output, res.CSS); err != nil {
		return err
	}
	if !settings.Quiet {
		printReport(cmd.OutOrStdout(), res.Diagnostics, stats, settings)
	}

	s := &session{
		engine:   eng,
		settings: settings,
		out:      cmd.OutOrStdout(),
		logger:   logger,
		css:      res.CSS,
	}
	discoverer := scanner.NewDiscoverer(".")
	w, err := watch.New(".", watch.Options{
		Debounce: getDurationWithFallback("debounce", "watch.debounce", watch.DefaultDebounce),
		Match: func(path string) bool {
			return discoverer.Match(cfg.Content, path)
		},
		SkipDir: discoverer.Ignored,
	}, func(path string) { s.sync(ctx, path) }, logger)
	if err != nil {
		return err
	}

	if !settings.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes (Ctrl+C to stop)")
	}
	return w.Run(ctx)
}

// session applies settled file events to the engine and keeps the output
// file current.
type session struct {
	engine   *utilcss.Engine
	settings buildSettings
	out      io.Writer
	logger   *slog.Logger

	mu  sync.Mutex
	css string
}

func (s *session) sync(ctx context.Context, path string) {
	start := time.Now()

	var (
		res *utilcss.Result
		err error
	)
	src, readErr := scanner.ReadSource(path, s.logger)
	switch {
	case readErr == nil:
		res, err = s.engine.OnSourceChanged(ctx, path, &src.Text)
	case errors.Is(readErr, os.ErrNotExist):
		res, err = s.engine.RemoveSource(ctx, path)
	default:
		s.logger.Warn("skipping content file", "file", path, "error", readErr)
		return
	}
	if errors.Is(err, utilcss.ErrSuperseded) || errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		s.logger.Error("update failed", "file", path, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A later event may already have written newer output.
	css, err := s.engine.CurrentStylesheet()
	if err != nil {
		s.logger.Error("render failed", "error", err)
		return
	}
	if css != s.css {
		if err := writeStylesheet(s.settings.Output, css); err != nil {
			s.logger.Error("write failed", "error", err)
			return
		}
		s.css = css
	}

	if s.settings.Quiet {
		return
	}
	s.logger.Debug("source synced", "file", path, "added", res.Added, "removed", res.Removed)
	if len(res.Diagnostics) > 0 {
		reporter := report.NewReporter(s.out, report.Config{
			UseColors:        s.settings.Color,
			PrintIssuedLines: s.settings.PrintLines,
			PrintLinterName:  s.settings.PrintLinterName,
			MaxIssues:        s.settings.MaxIssues,
		})
		reporter.PrintIssues(toIssues(res.Diagnostics))
	}
	if len(res.Added) > 0 || len(res.Removed) > 0 {
		fmt.Fprintf(s.out, "%s: +%d -%d rules (%s)\n",
			path, len(res.Added), len(res.Removed), time.Since(start).Round(time.Millisecond))
	}
}
