package utilcss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yacobolo/utilcss/internal/cache"
	"github.com/yacobolo/utilcss/internal/emitter"
	"github.com/yacobolo/utilcss/internal/resolver"
	"github.com/yacobolo/utilcss/internal/scanner"
	"github.com/yacobolo/utilcss/internal/theme"
)

// stylesheetName labels both sides of Result.Diff.
const stylesheetName = "utilities.css"

// Source is in-memory content handed to ScanAll.
type Source struct {
	ID   string
	Text string
}

// Result is the outcome of a source change.
type Result struct {
	CSS         string
	Diff        string   // unified diff against the previous stylesheet, "" when unchanged
	Added       []string // classes whose rules entered the stylesheet
	Removed     []string // classes whose rules left it
	Diagnostics []Diagnostic
	Skipped     int // ScanAll sources whose hash matched the recorded one
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMemoSize bounds the per-theme resolution memo.
func WithMemoSize(n int) Option {
	return func(e *Engine) { e.memoSize = n }
}

// WithPlugins registers programmatic plugins after the configured ones.
func WithPlugins(plugins ...theme.Plugin) Option {
	return func(e *Engine) { e.plugins = append(e.plugins, plugins...) }
}

// WithConcurrency caps the number of sources ScanAll scans at once.
// The default is GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// Engine is a configured generator. It is safe for concurrent use.
type Engine struct {
	logger      *slog.Logger
	memoSize    int
	concurrency int
	plugins     []theme.Plugin

	// mu guards the configuration. Source updates hold it for reading,
	// Reconfigure for writing, so no update spans two themes.
	mu       sync.RWMutex
	cfg      Config
	theme    *theme.Theme
	resolver *resolver.Resolver
	cfgErr   error

	cache *cache.Cache

	seqMu sync.Mutex
	seqs  map[string]uint64

	// diags holds the diagnostics of each source's last scan, so skipped
	// sources still report them.
	diagMu sync.Mutex
	diags  map[string]sourceDiagnostics

	// renderMu serializes rendering so the stored stylesheet always
	// reflects the newest cache state read.
	renderMu sync.Mutex
	css      string
}

type sourceDiagnostics struct {
	hash  string
	diags []Diagnostic
}

type generation struct {
	cfg      Config
	theme    *theme.Theme
	resolver *resolver.Resolver
}

// Configure builds an engine. Malformed configuration yields a
// *ConfigError and no engine.
func Configure(cfg Config, opts ...Option) (*Engine, error) {
	e := &Engine{seqs: make(map[string]uint64), diags: make(map[string]sourceDiagnostics)}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.concurrency <= 0 {
		e.concurrency = runtime.GOMAXPROCS(0)
	}

	gen, err := e.build(cfg)
	if err != nil {
		return nil, err
	}
	e.cfg, e.theme, e.resolver = gen.cfg, gen.theme, gen.resolver
	e.cache = cache.New(gen.resolver.Resolve, e.logger)
	e.logger.Debug("engine configured", "theme", gen.theme.Hash(), "plugins", cfg.pluginNames())
	return e, nil
}

func (e *Engine) build(cfg Config) (generation, error) {
	opts, err := cfg.themeOptions(e.plugins)
	if err != nil {
		return generation{}, err
	}
	th, err := theme.New(nil, opts)
	if err != nil {
		return generation{}, err
	}
	r, err := resolver.New(th, cfg.resolverOptions(e.memoSize))
	if err != nil {
		return generation{}, fmt.Errorf("create resolver: %w", err)
	}
	return generation{cfg: cfg, theme: th, resolver: r}, nil
}

// Reconfigure swaps in a new configuration and re-resolves every tracked
// token before any further update is applied. An invalid configuration
// puts the engine in the fail-closed state: output calls return
// ErrNotConfigured until a valid configuration is applied.
func (e *Engine) Reconfigure(cfg Config) (*Result, error) {
	gen, err := e.build(cfg)

	e.mu.Lock()
	if err != nil {
		e.cfgErr = err
		e.mu.Unlock()
		e.logger.Warn("configuration rejected, output withheld", "error", err)
		return nil, err
	}
	e.cfg, e.theme, e.resolver, e.cfgErr = gen.cfg, gen.theme, gen.resolver, nil
	e.cache.Invalidate(gen.resolver.Resolve)
	e.forgetDiagnostics("")
	e.mu.Unlock()

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.render(nil, nil, nil), nil
}

// OnSourceChanged records new text for a source, or removes it when text
// is nil, and returns the updated stylesheet.
func (e *Engine) OnSourceChanged(ctx context.Context, id string, text *string) (*Result, error) {
	seq := e.nextSeq(id)

	e.mu.RLock()
	defer e.mu.RUnlock()

	var (
		delta cache.Delta
		diags []Diagnostic
		err   error
	)
	if text == nil {
		delta, err = e.cache.Remove(ctx, id, seq)
		if err == nil {
			e.forgetDiagnostics(id)
		}
	} else {
		var change cache.Change
		change, diags = e.scan(id, *text)
		change.Seq = seq
		delta, err = e.cache.Update(ctx, change)
	}
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", id, err)
	}
	if e.cfgErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, e.cfgErr)
	}
	sortDiagnostics(diags)
	return e.render(delta.Added, delta.Removed, diags), nil
}

// RemoveSource drops a source.
func (e *Engine) RemoveSource(ctx context.Context, id string) (*Result, error) {
	return e.OnSourceChanged(ctx, id, nil)
}

// ScanAll scans sources concurrently and commits each one. Sources whose
// content hash matches the recorded one are skipped. The resulting
// stylesheet does not depend on the order sources are given or committed.
func (e *Engine) ScanAll(ctx context.Context, sources []Source) (*Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var (
		mu      sync.Mutex
		added   []*resolver.Rule
		removed []*resolver.Rule
		diags   []Diagnostic
		skipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, src := range sources {
		g.Go(func() error {
			hash := scanner.HashString(src.Text)
			if recorded, ok := e.cache.SourceHash(src.ID); ok && recorded == hash {
				ds := e.recordedDiagnostics(src.ID, hash, src.Text)
				mu.Lock()
				skipped++
				diags = append(diags, ds...)
				mu.Unlock()
				return nil
			}

			change, ds := e.scan(src.ID, src.Text)
			change.Seq = e.nextSeq(src.ID)
			delta, err := e.cache.Update(gctx, change)
			if errors.Is(err, cache.ErrSuperseded) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("source %s: %w", src.ID, err)
			}

			mu.Lock()
			added = append(added, delta.Added...)
			removed = append(removed, delta.Removed...)
			diags = append(diags, ds...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if e.cfgErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotConfigured, e.cfgErr)
	}

	e.logger.Debug("scan complete", "sources", len(sources), "skipped", skipped, "diagnostics", len(diags))
	sortDiagnostics(diags)
	res := e.render(added, removed, diags)
	res.Skipped = skipped
	return res, nil
}

// CurrentStylesheet renders the stylesheet for the tracked sources.
func (e *Engine) CurrentStylesheet() (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.cfgErr != nil {
		return "", fmt.Errorf("%w: %w", ErrNotConfigured, e.cfgErr)
	}
	return e.render(nil, nil, nil).CSS, nil
}

// Sources lists the tracked source identifiers.
func (e *Engine) Sources() []string { return e.cache.Sources() }

// RuleCount reports how many rules the stylesheet currently holds.
func (e *Engine) RuleCount() int { return len(e.cache.Rules()) }

// SourceHash returns the content hash recorded for a source.
func (e *Engine) SourceHash(id string) (string, bool) { return e.cache.SourceHash(id) }

// ThemeHash identifies the active theme.
func (e *Engine) ThemeHash() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.theme.Hash()
}

// SaveSnapshot persists the tracked sources and their tokens.
func (e *Engine) SaveSnapshot(path string) error {
	e.mu.RLock()
	snap := e.cache.Export(e.theme.Hash())
	e.mu.RUnlock()

	if err := cache.Save(path, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	e.logger.Debug("snapshot saved", "path", path, "sources", len(snap.Sources))
	return nil
}

// LoadSnapshot restores tracked sources from path. Tokens are re-resolved
// against the current theme, so a snapshot from another theme is still
// usable. It reports false when no snapshot exists.
func (e *Engine) LoadSnapshot(ctx context.Context, path string) (bool, error) {
	snap, err := cache.Load(path)
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if snap == nil {
		return false, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if snap.ThemeHash != e.theme.Hash() {
		e.logger.Info("snapshot was taken with a different theme, re-resolving", "path", path)
	}
	if _, err := e.cache.Restore(ctx, *snap); err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	e.logger.Debug("snapshot restored", "path", path, "sources", len(snap.Sources))
	return true, nil
}

// scan extracts a source's tokens and collects diagnostics for those that
// look like utilities but do not resolve. Callers hold e.mu.
func (e *Engine) scan(id, text string) (cache.Change, []Diagnostic) {
	tokens := scanner.Scan(text, id)
	change := cache.Change{
		SourceID: id,
		Hash:     scanner.HashString(text),
		Tokens:   scanner.Values(tokens),
	}

	var diags []Diagnostic
	for _, tok := range tokens {
		if _, ok := e.resolver.Resolve(tok.Value); ok || !e.resolver.Diagnosable(tok.Value) {
			continue
		}
		line, col, lineText := scanner.Position(text, tok.Offset)
		diags = append(diags, unknownUtility(id, tok.Value, line, col, lineText))
	}

	e.diagMu.Lock()
	e.diags[id] = sourceDiagnostics{hash: change.Hash, diags: diags}
	e.diagMu.Unlock()
	return change, diags
}

// recordedDiagnostics returns the diagnostics of an unchanged source,
// scanning it again when none are recorded for hash, as after a snapshot
// restore. Callers hold e.mu.
func (e *Engine) recordedDiagnostics(id, hash, text string) []Diagnostic {
	e.diagMu.Lock()
	rec, ok := e.diags[id]
	e.diagMu.Unlock()
	if ok && rec.hash == hash {
		return rec.diags
	}
	_, diags := e.scan(id, text)
	return diags
}

// forgetDiagnostics drops the recorded diagnostics of id, or of every
// source when id is empty.
func (e *Engine) forgetDiagnostics(id string) {
	e.diagMu.Lock()
	defer e.diagMu.Unlock()
	if id == "" {
		clear(e.diags)
		return
	}
	delete(e.diags, id)
}

// render emits the stylesheet from the current cache state. Callers hold
// e.mu for reading.
func (e *Engine) render(added, removed []*resolver.Rule, diags []Diagnostic) *Result {
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	css := emitter.Emit(e.cache.Rules(), emitter.Options{Minify: e.cfg.Minify, Layer: e.cfg.Layer})
	res := &Result{
		CSS:         css,
		Diff:        emitter.Diff(stylesheetName, e.css, css),
		Added:       classNames(added),
		Removed:     classNames(removed),
		Diagnostics: diags,
	}
	e.css = css
	return res
}

func (e *Engine) nextSeq(id string) uint64 {
	e.seqMu.Lock()
	defer e.seqMu.Unlock()
	e.seqs[id]++
	return e.seqs[id]
}

func classNames(rules []*resolver.Rule) []string {
	if len(rules) == 0 {
		return nil
	}
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Class)
	}
	sort.Strings(names)
	return names
}
