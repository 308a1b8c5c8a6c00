package utilcss

import (
	"errors"

	"github.com/yacobolo/utilcss/internal/cache"
	"github.com/yacobolo/utilcss/internal/theme"
)

var (
	// ErrNotConfigured is returned while the last configuration was
	// invalid. Source changes are still recorded; output is withheld until a
	// valid configuration is applied.
	ErrNotConfigured = errors.New("no valid configuration")

	// ErrSuperseded is returned when a newer change to the same source was
	// committed first. Callers can drop the stale result.
	ErrSuperseded = cache.ErrSuperseded

	// ErrInternal marks a violated generation cache invariant.
	ErrInternal = cache.ErrInternal
)

// ConfigError reports malformed configuration: a bad theme reference, an
// invalid screen, a plugin cycle. Path locates the offending entry.
type ConfigError = theme.ConfigError
