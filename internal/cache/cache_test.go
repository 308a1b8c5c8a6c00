package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yacobolo/utilcss/internal/resolver"
	"github.com/yacobolo/utilcss/internal/theme"
)

func resolveFunc(t *testing.T, opts theme.Options) ResolveFunc {
	t.Helper()
	th, err := theme.New(nil, opts)
	require.NoError(t, err)
	r, err := resolver.New(th, resolver.Options{})
	require.NoError(t, err)
	return r.Resolve
}

func classes(rules []*resolver.Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Class
	}
	return out
}

func TestReferenceCounting(t *testing.T) {
	ctx := context.Background()
	c := New(resolveFunc(t, theme.Options{}), nil)

	delta, err := c.Update(ctx, Change{SourceID: "a.html", Tokens: []string{"p-4"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-4"}, classes(delta.Added))

	delta, err = c.Update(ctx, Change{SourceID: "b.html", Tokens: []string{"p-4"}})
	require.NoError(t, err)
	assert.True(t, delta.Empty())
	assert.Equal(t, 2, c.RefCount("p-4"))

	delta, err = c.Remove(ctx, "a.html", 0)
	require.NoError(t, err)
	assert.True(t, delta.Empty())
	assert.Equal(t, []string{"p-4"}, classes(c.Rules()))

	delta, err = c.Remove(ctx, "b.html", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-4"}, classes(delta.Removed))
	assert.Empty(t, c.Rules())
	assert.Equal(t, 0, c.RefCount("p-4"))
}

func TestUpdateResolvesOnlyAddedTokens(t *testing.T) {
	ctx := context.Background()
	base := resolveFunc(t, theme.Options{})
	var calls []string
	c := New(func(tok string) (*resolver.Rule, bool) {
		calls = append(calls, tok)
		return base(tok)
	}, nil)

	_, err := c.Update(ctx, Change{SourceID: "a", Tokens: []string{"p-4", "m-2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m-2", "p-4"}, calls)

	calls = nil
	delta, err := c.Update(ctx, Change{SourceID: "a", Tokens: []string{"p-4", "flex"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"flex"}, calls)
	assert.Equal(t, []string{"flex"}, classes(delta.Added))
	assert.Equal(t, []string{"m-2"}, classes(delta.Removed))
	assert.Equal(t, []string{"flex", "p-4"}, c.Tokens("a"))
}

func TestUnresolvableTokensAreTrackedWithoutRules(t *testing.T) {
	c := New(resolveFunc(t, theme.Options{}), nil)

	delta, err := c.Update(context.Background(), Change{SourceID: "a", Tokens: []string{"foo-bar-123", "div"}})
	require.NoError(t, err)

	assert.True(t, delta.Empty())
	assert.Empty(t, c.Rules())
	assert.Equal(t, 1, c.RefCount("foo-bar-123"))
}

func TestSequencing(t *testing.T) {
	ctx := context.Background()
	c := New(resolveFunc(t, theme.Options{}), nil)

	_, err := c.Update(ctx, Change{SourceID: "a", Seq: 2, Tokens: []string{"p-4"}})
	require.NoError(t, err)

	_, err = c.Update(ctx, Change{SourceID: "a", Seq: 1, Tokens: []string{"m-2"}})
	require.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, []string{"p-4"}, c.Tokens("a"))

	_, err = c.Remove(ctx, "a", 3)
	require.NoError(t, err)

	_, err = c.Update(ctx, Change{SourceID: "a", Seq: 2, Tokens: []string{"p-4"}})
	require.ErrorIs(t, err, ErrSuperseded)
	assert.Empty(t, c.Sources())

	_, err = c.Update(ctx, Change{SourceID: "a", Seq: 4, Tokens: []string{"m-2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"m-2"}, c.Tokens("a"))
}

func TestCancelledUpdateLeavesSnapshotUntouched(t *testing.T) {
	c := New(resolveFunc(t, theme.Options{}), nil)
	_, err := c.Update(context.Background(), Change{SourceID: "a", Tokens: []string{"p-4"}})
	require.NoError(t, err)
	_, before := c.Generation()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Update(ctx, Change{SourceID: "a", Tokens: []string{"m-2"}})
	require.ErrorIs(t, err, context.Canceled)

	_, after := c.Generation()
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"p-4"}, c.Tokens("a"))
}

func TestInvalidateReresolvesEverything(t *testing.T) {
	ctx := context.Background()
	c := New(resolveFunc(t, theme.Options{}), nil)
	_, err := c.Update(ctx, Change{SourceID: "a", Tokens: []string{"p-4", "p-13"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"p-4"}, classes(c.Rules()))

	c.Invalidate(resolveFunc(t, theme.Options{
		Extend: []theme.Tree{{"spacing": theme.Tree{"4": "2rem", "13": "3.25rem"}}},
	}))

	rules := c.Rules()
	require.Equal(t, []string{"p-13", "p-4"}, classes(rules))
	assert.Equal(t, "3.25rem", rules[0].Declarations[0].Value)
	assert.Equal(t, "2rem", rules[1].Declarations[0].Value)

	epoch, _ := c.Generation()
	assert.Equal(t, uint64(1), epoch)
}

func TestUpdateRetriesAcrossEpochChange(t *testing.T) {
	oldResolve := resolveFunc(t, theme.Options{})
	newResolve := resolveFunc(t, theme.Options{
		Extend: []theme.Tree{{"spacing": theme.Tree{"4": "2rem"}}},
	})

	var c *Cache
	var once sync.Once
	c = New(func(tok string) (*resolver.Rule, bool) {
		once.Do(func() { c.Invalidate(newResolve) })
		return oldResolve(tok)
	}, nil)

	_, err := c.Update(context.Background(), Change{SourceID: "a", Tokens: []string{"p-4"}})
	require.NoError(t, err)

	rules := c.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "2rem", rules[0].Declarations[0].Value, "stale resolution must not be committed")
}

func TestConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	base := resolveFunc(t, theme.Options{})
	var resolved atomic.Int64
	c := New(func(tok string) (*resolver.Rule, bool) {
		resolved.Add(1)
		return base(tok)
	}, nil)

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Update(ctx, Change{
				SourceID: fmt.Sprintf("src-%02d", i),
				Tokens:   []string{"p-4", "flex", fmt.Sprintf("m-%d", i%4)},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, n, c.RefCount("p-4"))
	assert.Equal(t, n/4, c.RefCount("m-0"))
	assert.Equal(t, []string{"flex", "m-0", "m-1", "m-2", "m-3", "p-4"}, classes(c.Rules()))
	assert.Len(t, c.Sources(), n)
}

func TestInvariantViolationAbortsUpdate(t *testing.T) {
	ctx := context.Background()
	c := New(resolveFunc(t, theme.Options{}), nil)
	_, err := c.Update(ctx, Change{SourceID: "a", Tokens: []string{"p-4", "m-2"}})
	require.NoError(t, err)

	c.mu.Lock()
	c.refs["p-4"] = 0
	c.mu.Unlock()

	_, err = c.Remove(ctx, "a", 0)
	require.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, []string{"m-2", "p-4"}, c.Tokens("a"))
	assert.Equal(t, 1, c.RefCount("m-2"), "no partial application")
}

func TestSourceHash(t *testing.T) {
	c := New(resolveFunc(t, theme.Options{}), nil)
	_, err := c.Update(context.Background(), Change{SourceID: "a", Hash: "abc", Tokens: []string{"p-4"}})
	require.NoError(t, err)

	hash, ok := c.SourceHash("a")
	assert.True(t, ok)
	assert.Equal(t, "abc", hash)

	_, ok = c.SourceHash("missing")
	assert.False(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	resolve := resolveFunc(t, theme.Options{})
	c := New(resolve, nil)
	_, err := c.Update(ctx, Change{SourceID: "b.html", Hash: "h2", Tokens: []string{"p-4", "md:flex"}})
	require.NoError(t, err)
	_, err = c.Update(ctx, Change{SourceID: "a.html", Hash: "h1", Tokens: []string{"p-4"}})
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "state", "snapshot.json")
	require.NoError(t, Save(path, c.Export("theme-1")))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file must be renamed away")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, Snapshot{
		FormatVersion: FormatVersion,
		ThemeHash:     "theme-1",
		Sources: []SourceRecord{
			{ID: "a.html", Hash: "h1", Tokens: []string{"p-4"}},
			{ID: "b.html", Hash: "h2", Tokens: []string{"md:flex", "p-4"}},
		},
	}, *loaded)

	restored := New(resolve, nil)
	delta, err := restored.Restore(ctx, *loaded)
	require.NoError(t, err)
	assert.Len(t, delta.Added, 2)
	assert.Equal(t, classes(c.Rules()), classes(restored.Rules()))
	assert.Equal(t, 2, restored.RefCount("p-4"))
}

func TestRestoreKeepsNewerState(t *testing.T) {
	ctx := context.Background()
	c := New(resolveFunc(t, theme.Options{}), nil)
	_, err := c.Update(ctx, Change{SourceID: "a", Seq: 1, Tokens: []string{"m-2"}})
	require.NoError(t, err)

	_, err = c.Restore(ctx, Snapshot{
		FormatVersion: FormatVersion,
		Sources:       []SourceRecord{{ID: "a", Tokens: []string{"p-4"}}, {ID: "b", Tokens: []string{"flex"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"m-2"}, c.Tokens("a"))
	assert.Equal(t, []string{"flex"}, c.Tokens("b"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	missing, err := Load(filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.Nil(t, missing)

	bad := filepath.Join(dir, "old.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"formatVersion": 99, "sources": []}`), 0o644))
	_, err = Load(bad)
	require.ErrorIs(t, err, ErrSnapshotVersion)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte(`{`), 0o644))
	_, err = Load(garbage)
	require.Error(t, err)
}
