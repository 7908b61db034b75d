package domain

import "errors"

// Sentinel errors shared across services and repositories. Services wrap them
// with context via fmt.Errorf("...: %w", err); controllers map them to HTTP
// status codes with errors.Is.
var (
	// ErrUnauthorized is returned when an operation is attempted without a resolved actor.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the actor is resolved but lacks permission for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned for malformed ids, bad date ordering, or
	// failed field validation. Wrappers must name the offending value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when an event, category, or member does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is reserved for future concurrent-update detection. Nothing
	// raises it yet.
	ErrConflict = errors.New("conflict")
)
