package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested row does not exist or is not
// owned by the requesting user.
var ErrNotFound = errors.New("not found")

// UpstreamError wraps a weather-provider failure: network error, timeout,
// non-success status, or a payload missing required fields. The synchronous
// path surfaces it to the caller; nothing is cached or enqueued.
type UpstreamError struct {
	Location string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("weather provider failed for %q: %v", e.Location, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ValidationError marks client input rejected before it reaches storage or
// the worker (bad comparator/field, duplicates, unknown ids).
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
