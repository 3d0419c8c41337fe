package application

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when no valid session backs an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a registration conflicts with a stored email.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSessionExpired is returned when the singleton session has lapsed. It
	// wraps ErrNotFound so callers that only care about absence keep working.
	ErrSessionExpired = fmt.Errorf("session expired: %w", ErrNotFound)
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
