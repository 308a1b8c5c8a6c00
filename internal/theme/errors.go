package theme

import "errors"

// ConfigError reports malformed theme or plugin configuration. Path is the
// dotted location of the offending entry.
type ConfigError struct {
	Path string
	Msg  string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return "config: " + e.Msg
	}
	return "config " + e.Path + ": " + e.Msg
}

func asConfigError(err error, target **ConfigError) bool {
	return errors.As(err, target)
}
