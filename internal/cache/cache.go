// Package cache maintains the generation snapshot: which tokens each source
// contributed and the rules those tokens resolved to. Rules are reference
// counted by source, so a rule leaves the stylesheet only once no tracked
// source still uses its token.
//
// Updates are computed without holding the lock and committed atomically;
// readers never observe a half-applied source.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/yacobolo/utilcss/internal/resolver"
)

var (
	// ErrSuperseded is returned when a newer change for the same source has
	// already been committed.
	ErrSuperseded = errors.New("superseded by a newer change")

	// ErrInternal marks a violated cache invariant. The update is aborted
	// and the snapshot left as it was.
	ErrInternal = errors.New("internal cache inconsistency")
)

// maxCommitAttempts bounds optimistic retries when the cache changes under
// an in-flight update.
const maxCommitAttempts = 8

// ResolveFunc maps a token to its rule.
type ResolveFunc func(token string) (*resolver.Rule, bool)

// Change is the scan result for one source. Seq orders changes to the same
// source; zero means unsequenced and loses to any sequenced change.
type Change struct {
	SourceID string
	Seq      uint64
	Hash     string
	Tokens   []string
}

// Delta describes how the emitted rule set changed.
type Delta struct {
	Added   []*resolver.Rule
	Removed []*resolver.Rule
}

// Empty reports whether the rule set is unchanged.
func (d Delta) Empty() bool { return len(d.Added) == 0 && len(d.Removed) == 0 }

type source struct {
	tokens map[string]struct{}
	hash   string
}

// Cache is the reference-counted generation snapshot.
type Cache struct {
	mu      sync.RWMutex
	resolve ResolveFunc
	logger  *slog.Logger

	epoch   uint64
	version uint64

	sources map[string]*source
	seqs    map[string]uint64 // highest committed seq per source, kept after removal
	refs    map[string]int    // token -> number of sources using it
	rules   map[string]*resolver.Rule
}

// New returns an empty cache resolving tokens with resolve.
func New(resolve ResolveFunc, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		resolve: resolve,
		logger:  logger,
		sources: make(map[string]*source),
		seqs:    make(map[string]uint64),
		refs:    make(map[string]int),
		rules:   make(map[string]*resolver.Rule),
	}
}

// Update replaces the token set recorded for change.SourceID.
func (c *Cache) Update(ctx context.Context, change Change) (Delta, error) {
	tokens := make(map[string]struct{}, len(change.Tokens))
	for _, t := range change.Tokens {
		tokens[t] = struct{}{}
	}
	return c.commit(ctx, change.SourceID, change.Seq, &source{tokens: tokens, hash: change.Hash})
}

// Remove drops a source. Removing an unknown source is a no-op.
func (c *Cache) Remove(ctx context.Context, sourceID string, seq uint64) (Delta, error) {
	return c.commit(ctx, sourceID, seq, nil)
}

type pending struct {
	epoch    uint64
	previous *source
	added    []string
	removed  []string
	resolved map[string]*resolver.Rule
}

// commit applies next (nil for removal) for id. Token resolution happens
// off-lock against the epoch observed at the start; the commit retries if
// the epoch or the source changed meanwhile.
func (c *Cache) commit(ctx context.Context, id string, seq uint64, next *source) (Delta, error) {
	for attempt := 0; attempt < maxCommitAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Delta{}, err
		}

		p, resolve, err := c.plan(id, seq, next)
		if err != nil {
			return Delta{}, err
		}

		p.resolved = make(map[string]*resolver.Rule, len(p.added))
		for i, tok := range p.added {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil {
					return Delta{}, err
				}
			}
			if rule, ok := resolve(tok); ok {
				p.resolved[tok] = rule
			}
		}

		if err := ctx.Err(); err != nil {
			return Delta{}, err
		}

		delta, retry, err := c.apply(id, seq, next, p)
		if err != nil {
			return Delta{}, err
		}
		if !retry {
			return delta, nil
		}
		c.logger.Debug("cache changed during update, retrying", "source", id, "attempt", attempt+1)
	}
	return Delta{}, fmt.Errorf("update %q: %w: too many concurrent conflicts", id, ErrInternal)
}

// plan computes the token delta for id under the read lock.
func (c *Cache) plan(id string, seq uint64, next *source) (pending, ResolveFunc, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if seq < c.seqs[id] {
		return pending{}, nil, ErrSuperseded
	}

	prev := c.sources[id]
	p := pending{epoch: c.epoch, previous: prev}
	if next != nil {
		for tok := range next.tokens {
			if prev == nil || !has(prev.tokens, tok) {
				p.added = append(p.added, tok)
			}
		}
	}
	if prev != nil {
		for tok := range prev.tokens {
			if next == nil || !has(next.tokens, tok) {
				p.removed = append(p.removed, tok)
			}
		}
	}
	sort.Strings(p.added)
	sort.Strings(p.removed)
	return p, c.resolve, nil
}

// apply commits a plan. retry is true when the plan went stale.
func (c *Cache) apply(id string, seq uint64, next *source, p pending) (Delta, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq < c.seqs[id] {
		return Delta{}, false, ErrSuperseded
	}
	if c.epoch != p.epoch || c.sources[id] != p.previous {
		return Delta{}, true, nil
	}

	// Validate before mutating so a violation leaves the snapshot intact.
	for _, tok := range p.removed {
		if c.refs[tok] < 1 {
			return Delta{}, false, fmt.Errorf("remove %q from %q: reference count %d: %w", tok, id, c.refs[tok], ErrInternal)
		}
	}
	for _, tok := range p.added {
		if c.refs[tok] == 0 && c.rules[tok] != nil {
			return Delta{}, false, fmt.Errorf("add %q to %q: unreferenced rule present: %w", tok, id, ErrInternal)
		}
	}

	var delta Delta
	for _, tok := range p.added {
		c.refs[tok]++
		if c.refs[tok] > 1 {
			continue
		}
		if rule, ok := p.resolved[tok]; ok {
			c.rules[tok] = rule
			delta.Added = append(delta.Added, rule)
		}
	}
	for _, tok := range p.removed {
		c.refs[tok]--
		if c.refs[tok] > 0 {
			continue
		}
		delete(c.refs, tok)
		if rule, ok := c.rules[tok]; ok {
			delete(c.rules, tok)
			delta.Removed = append(delta.Removed, rule)
		}
	}

	if next == nil {
		delete(c.sources, id)
	} else {
		c.sources[id] = next
	}
	if seq > c.seqs[id] {
		c.seqs[id] = seq
	}
	c.version++

	c.logger.Debug("source committed",
		"source", id,
		"added_tokens", len(p.added),
		"removed_tokens", len(p.removed),
		"added_rules", len(delta.Added),
		"removed_rules", len(delta.Removed))
	return delta, false, nil
}

// Invalidate starts a new epoch: every tracked token is re-resolved with
// resolve while updates are blocked.
func (c *Cache) Invalidate(resolve ResolveFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resolve = resolve
	c.epoch++
	c.version++

	rules := make(map[string]*resolver.Rule, len(c.rules))
	for tok := range c.refs {
		if rule, ok := resolve(tok); ok {
			rules[tok] = rule
		}
	}
	c.rules = rules
	c.logger.Info("theme epoch started", "epoch", c.epoch, "tokens", len(c.refs), "rules", len(rules))
}

// Rules returns the current rule set ordered by token.
func (c *Cache) Rules() []*resolver.Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*resolver.Rule, 0, len(c.rules))
	for _, tok := range sortedKeys(c.rules) {
		out = append(out, c.rules[tok])
	}
	return out
}

// Tokens returns the tokens recorded for a source, sorted.
func (c *Cache) Tokens(sourceID string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	src, ok := c.sources[sourceID]
	if !ok {
		return nil
	}
	return sortedKeys(src.tokens)
}

// Sources lists tracked source identifiers, sorted.
func (c *Cache) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedKeys(c.sources)
}

// SourceHash returns the content hash recorded for a source.
func (c *Cache) SourceHash(sourceID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	src, ok := c.sources[sourceID]
	if !ok {
		return "", false
	}
	return src.hash, true
}

// RefCount returns how many sources reference token.
func (c *Cache) RefCount(token string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refs[token]
}

// Generation returns the theme epoch and the commit version.
func (c *Cache) Generation() (epoch, version uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch, c.version
}

func has(m map[string]struct{}, k string) bool {
	_, ok := m[k]
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
