package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/camportal/internal/auth"
	"github.com/nerrad567/camportal/internal/infrastructure/config"
	"github.com/nerrad567/camportal/internal/infrastructure/database"
	"github.com/nerrad567/camportal/internal/infrastructure/logging"
	"github.com/nerrad567/camportal/internal/stream"
	"github.com/nerrad567/camportal/internal/wifi"
	_ "github.com/nerrad567/camportal/migrations" // registers the schema
)

const (
	testJWTSecret  = "test-secret-key-at-least-32-characters-long"
	testAdminToken = "AdminToken01"
)

// testEnv is a server backed by a temp-file SQLite database seeded with
// testAdminToken.
type testEnv struct {
	srv    *Server
	db     *database.DB
	tokens *auth.SQLiteTokenRepository
	wifi   *wifi.Store
	state  *stream.State
}

// staticFrames serves the same tiny frame forever.
type staticFrames struct{}

func (staticFrames) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte{0xFF, 0xD8, 0xFF, 0xD9}, nil
}

// failingStore rejects every save.
type failingStore struct{}

func (failingStore) Save(context.Context, string, string) error {
	return context.DeadlineExceeded
}

// newTestEnv creates a server. mutate may adjust the dependencies first.
func newTestEnv(t *testing.T, mutate ...func(*Deps)) *testEnv {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:        filepath.Join(t.TempDir(), "api-test.db"),
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

	tokens := auth.NewTokenRepository(db.DB)
	if _, err := tokens.Create(ctx, testAdminToken); err != nil {
		t.Fatalf("seeding token: %v", err)
	}

	sealer, err := wifi.NewSealer("test-storage-key")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	store := wifi.NewStore(db.DB, sealer)
	state := stream.NewState()

	deps := Deps{
		ConfigServer: config.ServerConfig{Enabled: true, Host: "127.0.0.1", Port: 0},
		DataServer:   config.ServerConfig{Enabled: true, Host: "127.0.0.1", Port: 0},
		Stream: config.StreamConfig{
			RequireSession: true,
			FrameInterval:  10 * time.Millisecond,
		},
		Security: config.SecurityConfig{
			JWT: config.JWTConfig{Secret: testJWTSecret, SessionTTL: 5},
		},
		DeviceID: "camportal-test",
		Logger:   logging.Discard(),
		DB:       db,
		Tokens:   tokens,
		WiFi:     store,
		State:    state,
		Frames:   staticFrames{},
		Version:  "test",
	}
	for _, fn := range mutate {
		fn(&deps)
	}

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	return &testEnv{srv: srv, db: db, tokens: tokens, wifi: store, state: state}
}

// postForm sends an urlencoded POST to h.
func postForm(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// get sends a GET to h.
func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func assertText(t *testing.T, w *httptest.ResponseRecorder, status int, body string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d (body %q)", w.Code, status, w.Body.String())
	}
	if got := w.Body.String(); got != body {
		t.Errorf("body = %q, want %q", got, body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Deps)
	}{
		{"logger", func(d *Deps) { d.Logger = nil }},
		{"tokens", func(d *Deps) { d.Tokens = nil }},
		{"wifi", func(d *Deps) { d.WiFi = nil }},
		{"state", func(d *Deps) { d.State = nil }},
		{"secret", func(d *Deps) { d.Security.JWT.Secret = "" }},
	}

	base := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := Deps{
				Logger:   logging.Discard(),
				Tokens:   base.tokens,
				WiFi:     base.wifi,
				State:    base.state,
				Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testJWTSecret}},
			}
			tt.mutate(&deps)
			if _, err := New(deps); err == nil {
				t.Errorf("New() without %s should fail", tt.name)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t)

	w := get(env.srv.DataHandler(), "/health")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID should be generated")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-id-123")
	w = httptest.NewRecorder()
	env.srv.DataHandler().ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "client-id-123" {
		t.Errorf("X-Request-ID = %q, want client-id-123", got)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w := get(env.srv.DataHandler(), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding health: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" || body["device_id"] != "camportal-test" {
		t.Errorf("health body = %v", body)
	}
	if body["streaming"] != true {
		t.Errorf("streaming = %v, want true at power-up", body["streaming"])
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t)
	env.db.Close() //nolint:errcheck // Simulating an unavailable database

	w := get(env.srv.DataHandler(), "/health")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"degraded"`) {
		t.Errorf("body = %s, want degraded status", w.Body.String())
	}
}

func TestRecovery(t *testing.T) {
	env := newTestEnv(t)
	h := env.srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := get(h, "/")
	assertText(t, w, http.StatusInternalServerError, msgInternal)
}

func TestBodySizeLimit(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"token": {testAdminToken}, "ssid": {strings.Repeat("x", maxRequestBodySize+1)}}
	w := postForm(env.srv.ConfigHandler(), "/submit", form)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for oversized body", w.Code)
	}
	if _, err := env.wifi.Load(context.Background()); err == nil {
		t.Error("oversized submission should not be stored")
	}
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.srv.Run(ctx) }()

	// Quitting stops only the configuration server; Run keeps going.
	env.srv.requestQuit()
	select {
	case err := <-done:
		t.Fatalf("Run returned after quit: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_ListenError(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) {
		d.ConfigServer.Host = "256.0.0.1"
		d.DataServer.Enabled = false
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := env.srv.Run(ctx); err == nil {
		t.Error("Run() should fail on an unusable address")
	}
}
