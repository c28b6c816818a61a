package auth

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/nerrad567/camportal/internal/infrastructure/config"
	"github.com/nerrad567/camportal/internal/infrastructure/database"
	_ "github.com/nerrad567/camportal/migrations" // registers the schema
)

// testDB opens a temp-file SQLite database with the device schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "auth-test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}
	return db.DB
}

// seedTestToken stores raw and returns its record.
func seedTestToken(t *testing.T, repo *SQLiteTokenRepository, raw string) *AccessToken {
	t.Helper()
	tok, err := repo.Create(context.Background(), raw)
	if err != nil {
		t.Fatalf("seeding token: %v", err)
	}
	return tok
}
