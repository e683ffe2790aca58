package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a local identity row does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput covers request validation failures before any work happens.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDependencyUnavailable signals a remote service that could not be
	// reached or timed out during precheck. No local writes have happened, so
	// the caller may retry once the dependency recovers.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrReferenceNotFound signals the remote service answered but the
	// requested role type or plan slug does not exist. Retrying without
	// correcting the input will not help.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrExternalActivation is returned when role assignment or subscription
	// activation failed after local rows were committed. Compensation has run;
	// the caller must re-submit the full request.
	ErrExternalActivation = errors.New("external activation failed")
	// ErrIdempotencyConflict is returned when an idempotency key has already
	// been used by a different or still in-flight request.
	ErrIdempotencyConflict = errors.New("idempotency conflict")
	ErrRateLimited         = errors.New("rate limited")
)

// ConflictError is a unique-constraint violation from the identity store,
// tagged with the field that collided so callers receive a field-level message
// instead of a generic failure.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "conflict"
	}
	return fmt.Sprintf("%s already in use", e.Field)
}

// NewConflictError builds a field-tagged conflict.
func NewConflictError(field string) *ConflictError {
	return &ConflictError{Field: field}
}

// ConflictField extracts the violated field when err wraps a ConflictError.
func ConflictField(err error) (string, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict.Field, true
	}
	return "", false
}
