package flock

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every ConfigError through errors.Is.
	ErrInvalidConfig = errors.New("invalid flock configuration")
	// ErrCapacityExceeded is returned when a store is already full.
	ErrCapacityExceeded = errors.New("agent store capacity exceeded")
	// ErrDuplicateID is returned when an agent id is already live.
	ErrDuplicateID = errors.New("agent id already in use")
)

// ConfigError reports a parameter rejected at setup time.
// Values are never clamped silently.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidConfig) match any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configErr(field string, value any, reason string) error {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}
