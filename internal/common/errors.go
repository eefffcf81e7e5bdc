package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// ErrorStoreUnavailable marks a failure of the backing store (network,
	// timeout, driver error). Callers decide whether to retry.
	ErrorStoreUnavailable = errors.New("store unavailable")

	// Validation errors. Wrapped with a field-specific message.
	ErrorInvalidInput = errors.New("invalid input")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
