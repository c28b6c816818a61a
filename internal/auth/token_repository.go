package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/nerrad567/camportal/internal/infrastructure/database"
)

// TokenRepository defines the interface for access token persistence.
type TokenRepository interface {
	Create(ctx context.Context, raw string) (*AccessToken, error)
	Authenticate(ctx context.Context, raw string) (*AccessToken, error)
	GetByID(ctx context.Context, id string) (*AccessToken, error)
	RemoveUnlessLast(ctx context.Context, raw string) error
	Count(ctx context.Context) (int, error)
}

// SQLiteTokenRepository implements TokenRepository using SQLite.
type SQLiteTokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new SQLite-backed token repository.
func NewTokenRepository(db *sql.DB) *SQLiteTokenRepository {
	return &SQLiteTokenRepository{db: db}
}

// Create stores the hash of raw and returns the new record.
// Returns ErrTokenExists if the same token is already stored.
func (r *SQLiteTokenRepository) Create(ctx context.Context, raw string) (*AccessToken, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	t := &AccessToken{
		ID:        uuid.NewString(),
		TokenHash: HashToken(raw),
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO access_tokens (id, token_hash, created_at) VALUES (?, ?, ?)",
		t.ID, t.TokenHash, now,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrTokenExists
		}
		return nil, fmt.Errorf("creating access token: %w", err)
	}
	return t, nil
}

// Authenticate looks up a raw token. Returns ErrTokenInvalid if it is not
// stored.
func (r *SQLiteTokenRepository) Authenticate(ctx context.Context, raw string) (*AccessToken, error) {
	return r.scanOne(ctx, "token_hash", HashToken(raw))
}

// GetByID retrieves a token record by its row ID.
func (r *SQLiteTokenRepository) GetByID(ctx context.Context, id string) (*AccessToken, error) {
	return r.scanOne(ctx, "id", id)
}

func (r *SQLiteTokenRepository) scanOne(ctx context.Context, column, value string) (*AccessToken, error) {
	var t AccessToken
	var createdAt string

	// column is one of two literals chosen above, never caller input.
	err := r.db.QueryRowContext(ctx,
		"SELECT id, token_hash, created_at FROM access_tokens WHERE "+column+" = ?", value, //nolint:gosec // G202: fixed column name
	).Scan(&t.ID, &t.TokenHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("getting access token: %w", err)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &t, nil
}

// RemoveUnlessLast deletes the given token unless it is the only one left.
// The existence check, the count and the delete share one transaction so
// two concurrent removals cannot empty the store.
//
// Returns:
//   - ErrTokenInvalid: the token is not stored
//   - ErrLastToken: the token is the last one; nothing was removed
func (r *SQLiteTokenRepository) RemoveUnlessLast(ctx context.Context, raw string) error {
	hash := HashToken(raw)

	return database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM access_tokens WHERE token_hash = ?", hash).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenInvalid
		}
		if err != nil {
			return fmt.Errorf("looking up access token: %w", err)
		}

		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM access_tokens").Scan(&count); err != nil {
			return fmt.Errorf("counting access tokens: %w", err)
		}
		if count <= 1 {
			return ErrLastToken
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM access_tokens WHERE id = ?", id); err != nil {
			return fmt.Errorf("removing access token: %w", err)
		}
		return nil
	})
}

// Count returns the number of stored tokens.
func (r *SQLiteTokenRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM access_tokens").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting access tokens: %w", err)
	}
	return count, nil
}
