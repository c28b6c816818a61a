package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// TokenLength is the number of characters in a generated token.
	TokenLength = 12

	tokenAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// rejectAbove is the largest multiple of len(tokenAlphabet) that fits
	// in a byte. Random bytes at or above it are discarded so every
	// character is equally likely.
	rejectAbove = 256 - 256%len(tokenAlphabet)

	fingerprintLength = 8
)

// GenerateToken returns a new random 12-character alphanumeric token.
func GenerateToken() (string, error) {
	out := make([]byte, 0, TokenLength)
	buf := make([]byte, TokenLength*2)
	for len(out) < TokenLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generating token: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, tokenAlphabet[int(b)%len(tokenAlphabet)])
			if len(out) == TokenLength {
				break
			}
		}
	}
	return string(out), nil
}

// HashToken computes the SHA-256 hash of a raw token string for storage.
// Raw tokens are never stored, only their hashes.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns a short prefix of the token hash. It is the only
// form in which a token may appear in logs or telemetry.
func Fingerprint(raw string) string {
	return HashToken(raw)[:fingerprintLength]
}
