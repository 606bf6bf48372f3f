// Package apperr defines the error kinds surfaced by the chat core.
// Callers branch on kind with errors.Is rather than matching strings.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an id that does not resolve to a live record.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the actor lacks rights for the mutation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument indicates malformed input, such as a self-chat
	// or an empty reaction emoji.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConflict marks a logically-expected race, such as concurrent
	// direct-chat creation. It is resolved by idempotent convergence and
	// never crosses the API boundary.
	ErrConflict = errors.New("conflict")
)

// NotFound wraps ErrNotFound with a description of the missing record.
func NotFound(what, id string) error {
	return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
}

// Unauthorized wraps ErrUnauthorized with the denied action.
func Unauthorized(action string) error {
	return fmt.Errorf("%s: %w", action, ErrUnauthorized)
}

// InvalidArgument wraps ErrInvalidArgument with the validation failure.
func InvalidArgument(reason string) error {
	return fmt.Errorf("%s: %w", reason, ErrInvalidArgument)
}
