package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FormatVersion is the on-disk snapshot schema version.
const FormatVersion = 1

// ErrSnapshotVersion is returned when a snapshot was written by an
// incompatible version.
var ErrSnapshotVersion = errors.New("unsupported snapshot format")

// SourceRecord is one source in a persisted snapshot.
type SourceRecord struct {
	ID     string   `json:"id"`
	Hash   string   `json:"hash"`
	Tokens []string `json:"tokens"`
}

// Snapshot is the persisted form of the cache. Rules are not stored; they
// are re-resolved against the current theme on restore.
type Snapshot struct {
	FormatVersion int            `json:"formatVersion"`
	ThemeHash     string         `json:"themeHash"`
	Sources       []SourceRecord `json:"sources"`
}

// Export captures the tracked sources and their tokens.
func (c *Cache) Export(themeHash string) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{FormatVersion: FormatVersion, ThemeHash: themeHash, Sources: []SourceRecord{}}
	for _, id := range sortedKeys(c.sources) {
		src := c.sources[id]
		s.Sources = append(s.Sources, SourceRecord{ID: id, Hash: src.hash, Tokens: sortedKeys(src.tokens)})
	}
	return s
}

// Restore replays a snapshot as unsequenced changes. Sources already
// updated with a sequenced change keep their current state.
func (c *Cache) Restore(ctx context.Context, s Snapshot) (Delta, error) {
	var total Delta
	for _, rec := range s.Sources {
		delta, err := c.Update(ctx, Change{SourceID: rec.ID, Hash: rec.Hash, Tokens: rec.Tokens})
		if errors.Is(err, ErrSuperseded) {
			continue
		}
		if err != nil {
			return total, fmt.Errorf("restore %q: %w", rec.ID, err)
		}
		total.Added = append(total.Added, delta.Added...)
		total.Removed = append(total.Removed, delta.Removed...)
	}
	return total, nil
}

// Save writes s to path atomically: a temporary sibling file is written,
// synced and renamed over path.
func Save(path string, s Snapshot) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	f, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-")
	if err != nil {
		return fmt.Errorf("create snapshot temp file: %w", err)
	}
	tmp := f.Name()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads a snapshot. A missing file yields (nil, nil) so callers can
// treat it as a cold start.
func Load(path string) (*Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: version %d", ErrSnapshotVersion, s.FormatVersion)
	}
	return &s, nil
}
