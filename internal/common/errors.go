// Package common defines sentinel errors and error types shared by the
// storefront client layers. Callers match them with errors.Is / errors.As.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a document that does not exist or could not be decoded.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable reports that the remote service could not be reached.
	ErrUnavailable = errors.New("service unavailable")

	// ErrUnauthorized reports a request rejected for missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is the target for errors.Is on every *ValidationError.
	ErrValidation = errors.New("validation error")
)

// ValidationError describes bad local input. It never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError is a shorthand for &ValidationError{Field: field, Reason: reason}.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
