// Package common defines shared constants and sentinel errors used across
// the auth core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// ErrNotAuthenticated covers bad username, bad password and email
	// mismatch uniformly. Which sub-check failed is never reported.
	ErrNotAuthenticated = errors.New("not authenticated")

	// Token decode errors.
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token signature invalid")
	ErrTokenExpired      = errors.New("token expired")

	// ErrTokenStale marks a well-formed, unexpired token whose embedded
	// password hash no longer matches the stored one (password changed or
	// identity deleted since issuance).
	ErrTokenStale = errors.New("token stale")

	// ErrValidationRejected marks a reset-redeem form that failed the
	// username match, the password confirmation match or the length bounds.
	ErrValidationRejected = errors.New("validation rejected")
)
