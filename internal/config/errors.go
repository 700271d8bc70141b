package config

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrInvalidConfig indicates a value outside its accepted range.
	ErrInvalidConfig = errors.New("config: invalid value")

	// ErrUnknownPreset indicates a metric preset name that does not exist.
	ErrUnknownPreset = errors.New("config: unknown preset")

	// ErrSchema indicates the file does not match the configuration schema.
	ErrSchema = errors.New("config: schema violation")
)

// FieldError wraps an error with the offending field.
type FieldError struct {
	Field   string
	Value   any
	Wrapped error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s=%v", e.Wrapped.Error(), e.Field, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Wrapped
}
