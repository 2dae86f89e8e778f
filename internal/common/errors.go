package common

import (
	"errors"
	"fmt"
)

// ErrConfig marks a malformed or unrecognized persisted configuration.
// It aborts loading of the data source it belongs to and nothing else.
var ErrConfig = errors.New("config error")

// ConfigError is a configuration failure. Field names the offending key when
// one can be singled out.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Is reports whether target is ErrConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// ConfigErrorf builds a ConfigError about field.
func ConfigErrorf(field, format string, args ...any) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}
