package auth

import "time"

// AccessToken is a stored admin token. The raw value is never persisted.
type AccessToken struct {
	ID        string    `json:"id"`
	TokenHash string    `json:"-"` // never serialised
	CreatedAt time.Time `json:"created_at"`
}
