package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTimestamp is returned when a timestamp cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp format")
	// ErrNotFound is returned for a well-formed timestamp that was never sampled.
	ErrNotFound = errors.New("timestamp not found")
)

// LoadError reports a failure to load the event log. It is fatal at startup.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Source, e.Err) }

func (e *LoadError) Unwrap() error { return e.Err }
