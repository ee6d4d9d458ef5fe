package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for unknown article, session or user ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParams marks a malformed query or request body.
	// It is a caller error and is never absorbed by the aggregator.
	ErrInvalidParams = errors.New("invalid params")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidParams) match any field error.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidParams
}
