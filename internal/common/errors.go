// Package common defines shared constants and sentinel errors used across
// repository, service and transport layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Registration errors. Returned both by the pre-check and by the
	// storage layer when the email uniqueness constraint fires.
	ErrUserExists = errors.New("user exists")

	// Login errors. The same value is used for an unknown email and a wrong
	// password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Refresh errors.
	ErrRefreshTokenRequired = errors.New("refresh token required")
	ErrInvalidToken         = errors.New("invalid token")

	// Password hashing errors.
	ErrMalformedHash   = errors.New("malformed password hash")
	ErrPasswordTooLong = errors.New("password too long")
)
