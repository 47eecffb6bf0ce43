// Package apperr defines the sentinel errors of the service layer.
// Handlers map them to HTTP status codes with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound marks operations on an id that does not exist, or that is
	// in the wrong state for the operation (e.g. restoring a note that is
	// not in the trash).
	ErrNotFound = errors.New("not found")

	// ErrConflict marks unique-name collisions and deleting a category that
	// still has active notes.
	ErrConflict = errors.New("conflict")

	// ErrInvalid marks rejected input: empty required fields, malformed
	// data-URIs, disallowed upload extensions.
	ErrInvalid = errors.New("invalid")
)
