package wifi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Credentials is a provisioned WiFi network.
type Credentials struct {
	SSID      string    `json:"ssid"`
	Password  string    `json:"-"` // never serialised
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists the single provisioned network.
type Store struct {
	db     *sql.DB
	sealer *Sealer
}

// NewStore creates a Store backed by db that seals passwords with sealer.
func NewStore(db *sql.DB, sealer *Sealer) *Store {
	return &Store{db: db, sealer: sealer}
}

// Save replaces the stored network. Empty values are stored as given;
// the portal does not validate SSIDs or passwords.
func (s *Store) Save(ctx context.Context, ssid, password string) error {
	sealed, err := s.sealer.Seal([]byte(password), []byte(ssid))
	if err != nil {
		return fmt.Errorf("sealing wifi password: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wifi_credentials (id, ssid, password_sealed, updated_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     ssid = excluded.ssid,
		     password_sealed = excluded.password_sealed,
		     updated_at = excluded.updated_at`,
		ssid, sealed, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving wifi credentials: %w", err)
	}
	return nil
}

// Load returns the stored network with its password opened.
// Returns ErrNotProvisioned if nothing has been saved.
func (s *Store) Load(ctx context.Context) (*Credentials, error) {
	var c Credentials
	var sealed []byte
	var updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT ssid, password_sealed, updated_at FROM wifi_credentials WHERE id = 1",
	).Scan(&c.SSID, &sealed, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotProvisioned
	}
	if err != nil {
		return nil, fmt.Errorf("loading wifi credentials: %w", err)
	}

	password, err := s.sealer.Open(sealed, []byte(c.SSID))
	if err != nil {
		return nil, err
	}
	c.Password = string(password)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled
	return &c, nil
}
