package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName carries the stream session JWT.
const SessionCookieName = "camportal_stream"

// defaultSessionTTL applies when the configured TTL is not positive.
const defaultSessionTTL = 60 * time.Minute

// StreamClaims is the payload of a stream session. Subject is the ID of
// the access token row that opened the gate.
type StreamClaims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"dev"`
}

// IssueStreamSession signs a stream session for the given token row.
func IssueStreamSession(tokenID, deviceID, secret string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	now := time.Now()
	expires := now.Add(ttl)
	claims := StreamClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenID,
			Audience:  jwt.ClaimStrings{"stream"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		DeviceID: deviceID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing stream session: %w", err)
	}
	return signed, expires, nil
}

// ParseStreamSession validates the signature, expiry and audience of a
// stream session and returns its claims.
func ParseStreamSession(tokenString, secret string) (*StreamClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &StreamClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience("stream"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	claims, ok := token.Claims.(*StreamClaims)
	if !ok || !token.Valid {
		return nil, ErrSessionInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrSessionInvalid)
	}
	return claims, nil
}

// SessionCookie builds the cookie that carries a stream session.
func SessionCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}
