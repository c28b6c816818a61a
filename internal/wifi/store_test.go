package wifi

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nerrad567/camportal/internal/infrastructure/config"
	"github.com/nerrad567/camportal/internal/infrastructure/database"
	_ "github.com/nerrad567/camportal/migrations" // registers the schema
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "wifi-test.db"),
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

func testSealer(t *testing.T, key string) *Sealer {
	t.Helper()
	s, err := NewSealer(key)
	if err != nil {
		t.Fatalf("NewSealer() error = %v", err)
	}
	return s
}

func TestStore_SaveLoad(t *testing.T) {
	db := testDB(t)
	store := NewStore(db, testSealer(t, "storage-key"))
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNotProvisioned) {
		t.Fatalf("Load() before Save error = %v, want %v", err, ErrNotProvisioned)
	}

	if err := store.Save(ctx, "My Wifi", "p@ss word"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.SSID != "My Wifi" || got.Password != "p@ss word" {
		t.Errorf("Load() = %q/%q, want %q/%q", got.SSID, got.Password, "My Wifi", "p@ss word")
	}
	if got.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be set")
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	store := NewStore(testDB(t), testSealer(t, "storage-key"))
	ctx := context.Background()

	if err := store.Save(ctx, "First", "one"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, "Second", ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.SSID != "Second" || got.Password != "" {
		t.Errorf("Load() = %q/%q, want Second and empty password", got.SSID, got.Password)
	}
}

func TestStore_PasswordNotStoredInClear(t *testing.T) {
	db := testDB(t)
	store := NewStore(db, testSealer(t, "storage-key"))
	ctx := context.Background()

	if err := store.Save(ctx, "HomeNet", "correct horse battery staple"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	var sealed []byte
	if err := db.QueryRowContext(ctx, "SELECT password_sealed FROM wifi_credentials").Scan(&sealed); err != nil {
		t.Fatalf("query: %v", err)
	}
	if bytes.Contains(sealed, []byte("correct horse")) {
		t.Error("password stored in clear text")
	}
}

func TestStore_WrongKey(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := NewStore(db, testSealer(t, "key-one")).Save(ctx, "HomeNet", "secret"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := NewStore(db, testSealer(t, "key-two")).Load(ctx); !errors.Is(err, ErrSealedDataCorrupt) {
		t.Errorf("Load() with another key error = %v, want %v", err, ErrSealedDataCorrupt)
	}
}

func TestSealer(t *testing.T) {
	s := testSealer(t, "storage-key")

	sealed, err := s.Seal([]byte("secret"), []byte("HomeNet"))
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		got, err := s.Open(sealed, []byte("HomeNet"))
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if string(got) != "secret" {
			t.Errorf("Open() = %q, want %q", got, "secret")
		}
	})

	t.Run("bound to ssid", func(t *testing.T) {
		if _, err := s.Open(sealed, []byte("OtherNet")); !errors.Is(err, ErrSealedDataCorrupt) {
			t.Errorf("Open() with other aad error = %v, want %v", err, ErrSealedDataCorrupt)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		if _, err := s.Open(sealed[:10], []byte("HomeNet")); !errors.Is(err, ErrSealedDataCorrupt) {
			t.Errorf("Open() truncated error = %v, want %v", err, ErrSealedDataCorrupt)
		}
	})

	t.Run("fresh nonce per seal", func(t *testing.T) {
		again, err := s.Seal([]byte("secret"), []byte("HomeNet"))
		if err != nil {
			t.Fatalf("Seal() error = %v", err)
		}
		if bytes.Equal(sealed, again) {
			t.Error("two seals of the same input should differ")
		}
	})
}

func TestNewSealer_EmptyKey(t *testing.T) {
	if _, err := NewSealer(""); err == nil {
		t.Error("NewSealer(\"\") should fail")
	}
}
