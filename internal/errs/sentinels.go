// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates a missing, expired, or rejected access token.
	// Callers must tear down the session when they see it.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., username taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates a request rejected before or by the backend
	// for a missing/invalid field.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates a transport failure or a backend-side error;
	// callers treat it like any non-2xx response.
	ErrUnavailable = errors.New("backend unavailable")
)
