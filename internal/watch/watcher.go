// Package watch turns file system events under a root directory into
// debounced per-file change notifications.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a path must stay quiet before its handler runs.
const DefaultDebounce = 100 * time.Millisecond

// Handler is called once per settled path. The file may no longer exist.
type Handler func(path string)

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Match selects the files to report. Nil reports every file.
	Match func(path string) bool
	// SkipDir prunes directories from the watch set.
	SkipDir func(path string) bool
}

// Watcher watches a directory tree.
type Watcher struct {
	fsw    *fsnotify.Watcher
	root   string
	opts   Options
	handle Handler
	logger *slog.Logger

	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer
	pending        sync.WaitGroup

	started chan struct{}
}

// New creates a watcher for root.
func New(root string, opts Options, handle Handler, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		fsw:            fsw,
		root:           root,
		opts:           opts,
		handle:         handle,
		logger:         logger,
		debounceTimers: make(map[string]*time.Timer),
		started:        make(chan struct{}),
	}, nil
}

// Run watches until ctx is done. Pending notifications are dropped on
// shutdown; handlers already running are waited for.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	w.logger.Info("file watcher started", "root", w.root)
	close(w.started)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			w.pending.Wait()
			w.logger.Info("file watcher stopped")
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.skipDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	return nil
}

func (w *Watcher) skipDir(path string) bool {
	switch filepath.Base(path) {
	case ".git", "node_modules":
		return true
	}
	return w.opts.SkipDir != nil && w.opts.SkipDir(path)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if isDir, err := statDir(path); err == nil && isDir {
			if !w.skipDir(path) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if w.opts.Match != nil && !w.opts.Match(path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	w.debounce(path)
}

// debounce schedules the handler for path, restarting the delay if an
// event for the same path is already pending.
func (w *Watcher) debounce(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[path]; exists {
		if timer.Stop() {
			w.pending.Done()
		}
	}

	w.pending.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.opts.Debounce, func() {
		defer w.pending.Done()

		w.debounceMu.Lock()
		if w.debounceTimers[path] == timer {
			delete(w.debounceTimers, path)
		}
		w.debounceMu.Unlock()

		w.handle(path)
	})
	w.debounceTimers[path] = timer
}

func (w *Watcher) stopTimers() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	for path, timer := range w.debounceTimers {
		if timer.Stop() {
			w.pending.Done()
		}
		delete(w.debounceTimers, path)
	}
}

func statDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return fi.IsDir(), nil
}

// Started is closed once the initial directory tree is being watched.
func (w *Watcher) Started() <-chan struct{} { return w.started }

// Pending reports how many paths are waiting out their debounce delay.
func (w *Watcher) Pending() int {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	return len(w.debounceTimers)
}
