package store

import "errors"

// Error handling guidelines:
// - Stores: wrap driver errors with fmt.Errorf("context: %w", err) or return
//   one of the sentinels below.
// - Handlers: translate to apperrors.* for HTTP responses.

var (
	// ErrNotFound indicates that a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden indicates that the user may not perform the action.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a uniqueness conflict, e.g. inserting a
	// membership row that already exists.
	ErrConflict = errors.New("conflict")

	// ErrExhausted indicates an invitation whose uses are spent.
	ErrExhausted = errors.New("invitation exhausted")
)
