package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateTopic is returned when a second registration is attempted for a
// topic that already has an owner. Silent duplicate registration produces
// multiple publications per gesture, so this is surfaced, never swallowed.
var ErrDuplicateTopic = errors.New("topic already registered")

// ErrTopicNotFound is returned when an operation references a topic with no
// active registration.
var ErrTopicNotFound = errors.New("topic not registered")

// ConfigError marks a declarative node that cannot be instantiated
// (duplicate path fragment, missing required property, malformed range).
// It is fatal to the affected node only; the composition engine skips the
// node and continues building the rest of the tree.
type ConfigError struct {
	Path   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error at %q: %s", e.Path, e.Reason)
}

// NewConfigError builds a ConfigError for the given node path.
func NewConfigError(path, format string, args ...any) *ConfigError {
	return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// InvalidValueError marks a raw value that cannot be applied to a ValueModel
// (non-numeric manual entry or unparsable inbound message). Callers recover
// locally: the message is discarded and the model left unchanged.
type InvalidValueError struct {
	Raw any
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value: %v (%T)", e.Raw, e.Raw)
}
