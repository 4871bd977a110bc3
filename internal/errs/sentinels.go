// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across session/client layers.
var (
	// ErrNoSession indicates no stored session exists (login required).
	ErrNoSession = errors.New("no session")

	// ErrCorruptSession indicates the stored session record is incomplete or undecodable.
	ErrCorruptSession = errors.New("corrupt session")

	// ErrUnauthorized indicates the backend rejected the credentials and a
	// refresh could not repair them.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrMalformedRefresh indicates a refresh response missing one of
	// token/refreshToken/tokenExpires.
	ErrMalformedRefresh = errors.New("malformed refresh response")
)
