package auth

import "errors"

// Sentinel errors for token and session operations.
var (
	// ErrTokenInvalid is returned when a presented token is unknown.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrTokenExists is returned when creating a token whose hash is
	// already stored.
	ErrTokenExists = errors.New("auth: token already exists")

	// ErrLastToken is returned when removal would leave no tokens.
	ErrLastToken = errors.New("auth: cannot remove the last token")

	// ErrSessionInvalid is returned for a missing, expired, or forged
	// stream session.
	ErrSessionInvalid = errors.New("auth: invalid stream session")
)
