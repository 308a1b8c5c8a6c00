package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Stats tracks file discovery statistics.
type Stats struct {
	FilesDiscovered int // files matched by the content globs
	FilesScanned    int // files kept after filtering
	FilesSkipped    int // files dropped by .gitignore
}

// Discoverer expands content globs relative to Root.
type Discoverer struct {
	Root   string
	ignore *ignore.GitIgnore
}

// NewDiscoverer loads Root/.gitignore when present. A missing or unreadable
// ignore file disables ignore filtering.
func NewDiscoverer(root string) *Discoverer {
	if root == "" {
		root = "."
	}
	d := &Discoverer{Root: root}
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		d.ignore = gi
	}
	return d
}

// Discover expands patterns relative to root and returns the matching files.
func Discover(root string, patterns []string) ([]string, Stats, error) {
	return NewDiscoverer(root).Discover(patterns)
}

// Discover returns the deduplicated, sorted set of regular files matching
// patterns. Relative patterns are joined to Root; ignore rules only apply
// to paths inside Root.
func (d *Discoverer) Discover(patterns []string) ([]string, Stats, error) {
	var files []string
	seen := make(map[string]bool)
	stats := Stats{}

	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(pattern) {
			full = filepath.Join(d.Root, pattern)
		}

		matches, err := doublestar.FilepathGlob(full)
		if err != nil {
			return nil, stats, fmt.Errorf("expand content pattern %q: %w", pattern, err)
		}

		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true

			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			stats.FilesDiscovered++

			if d.Ignored(match) {
				stats.FilesSkipped++
				continue
			}
			files = append(files, match)
			stats.FilesScanned++
		}
	}

	sort.Strings(files)
	return files, stats, nil
}

// Ignored reports whether path is excluded by the root's .gitignore.
func (d *Discoverer) Ignored(path string) bool {
	if d.ignore == nil {
		return false
	}
	rel, err := filepath.Rel(d.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return d.ignore.MatchesPath(filepath.ToSlash(rel))
}

// Match reports whether path matches any of patterns relative to Root. The
// watch loop uses it to filter newly created files.
func (d *Discoverer) Match(patterns []string, path string) bool {
	for _, pattern := range patterns {
		full := pattern
		if !filepath.IsAbs(pattern) {
			full = filepath.Join(d.Root, pattern)
		}
		if ok, _ := doublestar.PathMatch(filepath.Clean(full), filepath.Clean(path)); ok {
			return !d.Ignored(path)
		}
	}
	return false
}
