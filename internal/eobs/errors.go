package eobs

import "errors"

var (
	// ErrNotFound signals a record that does not exist or is not owned by
	// the caller; the two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("eob not found")
	// ErrInvalidInput signals a validation failure before any state change.
	ErrInvalidInput = errors.New("invalid input")
)
