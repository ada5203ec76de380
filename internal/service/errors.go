package service

import "errors"

// Failure kinds surfaced by the auth core. Everything that goes wrong
// while proving identity collapses to ErrUnauthenticated at the boundary;
// the wrapped detail exists for server-side diagnostics only and must
// never reach a response body.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)
