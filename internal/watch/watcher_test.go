package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func newRecorder() *recorder { return &recorder{ch: make(chan string, 64)} }

func (r *recorder) handle(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.ch <- path
}

func (r *recorder) next(t *testing.T) string {
	t.Helper()
	select {
	case p := <-r.ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file event")
		return ""
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func startWatcher(t *testing.T, root string, opts Options, h Handler) *Watcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(root, opts, h, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	select {
	case <-w.Started():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not start")
	}
	return w
}

func htmlOnly(path string) bool { return strings.HasSuffix(path, ".html") }

func TestWatcherReportsMatchingWrites(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	startWatcher(t, root, Options{Debounce: 20 * time.Millisecond, Match: htmlOnly}, rec.handle)

	path := filepath.Join(root, "index.html")
	require.NoError(t, os.WriteFile(path, []byte(`<div class="p-4">`), 0o644))

	assert.Equal(t, path, rec.next(t))
}

func TestWatcherIgnoresNonMatchingFiles(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	startWatcher(t, root, Options{Debounce: 20 * time.Millisecond, Match: htmlOnly}, rec.handle)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	path := filepath.Join(root, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("y"), 0o644))

	assert.Equal(t, path, rec.next(t))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	startWatcher(t, root, Options{Debounce: 200 * time.Millisecond, Match: htmlOnly}, rec.handle)

	path := filepath.Join(root, "burst.html")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", i+1)), 0o644))
	}

	assert.Equal(t, path, rec.next(t))
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestWatcherReportsRemovals(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.html")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	rec := newRecorder()
	startWatcher(t, root, Options{Debounce: 20 * time.Millisecond, Match: htmlOnly}, rec.handle)

	require.NoError(t, os.Remove(path))
	assert.Equal(t, path, rec.next(t))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	startWatcher(t, root, Options{Debounce: 20 * time.Millisecond, Match: htmlOnly}, rec.handle)

	dir := filepath.Join(root, "partials")
	require.NoError(t, os.Mkdir(dir, 0o755))
	// The directory is added from the event loop; give it a moment.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "nav.html")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.Equal(t, path, rec.next(t))
}

func TestWatcherSkipsDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))

	rec := newRecorder()
	skip := func(path string) bool { return filepath.Base(path) == "vendor" }
	startWatcher(t, root, Options{Debounce: 20 * time.Millisecond, Match: htmlOnly, SkipDir: skip}, rec.handle)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "a.html"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "vendor", "b.html"), []byte("x"), 0o644))
	path := filepath.Join(root, "c.html")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	assert.Equal(t, path, rec.next(t))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestShutdownDropsPendingEvents(t *testing.T) {
	root := t.TempDir()
	rec := newRecorder()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(root, Options{Debounce: time.Hour, Match: htmlOnly}, rec.handle, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-w.Started()

	require.NoError(t, os.WriteFile(filepath.Join(root, "x.html"), []byte("x"), 0o644))
	require.Eventually(t, func() bool { return w.Pending() == 1 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, w.Pending())
	assert.Equal(t, 0, rec.count())
}
