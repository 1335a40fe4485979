package coordinator

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery is returned for empty or whitespace-only input.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrRequestPending is returned when a request is already outstanding.
	ErrRequestPending = errors.New("a request is already pending")
)

// ValidationError is a local rejection that never reaches the network.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
