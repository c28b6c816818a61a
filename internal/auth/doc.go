// Package auth manages the device's admin access tokens and the stream
// session that a valid token unlocks.
//
// Tokens are 12-character alphanumeric strings. Only their SHA-256 hash is
// stored; a raw token exists in memory for the duration of one request and
// in the response that hands a newly added token to its owner. The store
// always keeps at least one token so the device cannot lock itself out.
//
// A successful stream gate submission yields an HS256 JWT carried in the
// camportal_stream cookie. The session names the token row that opened it,
// so removing a token ends the sessions it granted.
package auth
