package portal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nerrad567/camportal/internal/api"
	"github.com/nerrad567/camportal/internal/auth"
	"github.com/nerrad567/camportal/internal/infrastructure/config"
	"github.com/nerrad567/camportal/internal/infrastructure/database"
	"github.com/nerrad567/camportal/internal/infrastructure/logging"
	"github.com/nerrad567/camportal/internal/portal"
	"github.com/nerrad567/camportal/internal/stream"
	"github.com/nerrad567/camportal/internal/wifi"
	_ "github.com/nerrad567/camportal/migrations" // registers the schema
)

const adminToken = "AdminToken01"

// lastView keeps the latest response text and alert.
type lastView struct {
	mu       sync.Mutex
	response string
	alert    string
}

func (v *lastView) ShowResponse(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.response = text
}

func (v *lastView) Alert(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alert = message
}

func (v *lastView) SetBusy(portal.Control, bool) {}

func (v *lastView) last() (string, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.response, v.alert
}

// device starts both portal servers against a fresh database.
func device(t *testing.T) (configURL, dataURL string) {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{
		Path:    filepath.Join(t.TempDir(), "e2e.db"),
		WALMode: true,
	})
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	tokens := auth.NewTokenRepository(db.DB)
	if _, err := tokens.Create(ctx, adminToken); err != nil {
		t.Fatalf("seeding token: %v", err)
	}
	sealer, err := wifi.NewSealer("e2e-storage-key")
	if err != nil {
		t.Fatal(err)
	}

	srv, err := api.New(api.Deps{
		Stream:   config.StreamConfig{RequireSession: true},
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: "e2e-secret-key-at-least-32-characters"}},
		DeviceID: "camportal-e2e",
		Logger:   logging.Discard(),
		Tokens:   tokens,
		WiFi:     wifi.NewStore(db.DB, sealer),
		State:    stream.NewState(),
	})
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}

	cfgTS := httptest.NewServer(srv.ConfigHandler())
	dataTS := httptest.NewServer(srv.DataHandler())
	t.Cleanup(cfgTS.Close)
	t.Cleanup(dataTS.Close)
	return cfgTS.URL, dataTS.URL
}

// client builds a page against baseURL whose navigator records loads.
func client(t *testing.T, baseURL string) (portal.Page, *lastView, *[]string) {
	t.Helper()

	tr, err := portal.NewHTTPTransport(baseURL, 0)
	if err != nil {
		t.Fatal(err)
	}
	view := &lastView{}
	var loads []string
	nav := &portal.PageLoader{
		Transport: tr,
		OnLoad: func(path string, page *portal.Response) {
			loads = append(loads, path+" "+http.StatusText(page.StatusCode))
		},
	}
	return portal.Page{Transport: tr, View: view, Navigator: nav, Logger: logging.Discard()}, view, &loads
}

func TestPortal_ConfigFlow(t *testing.T) {
	configURL, dataURL := device(t)
	ctx := context.Background()

	page, view, loads := client(t, configURL)

	prov, err := portal.NewProvisioningController(page, portal.Text("My Wifi"), portal.Text("p@ss word"), portal.Text(adminToken))
	if err != nil {
		t.Fatal(err)
	}
	if err := prov.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp, _ := view.last(); resp != "WiFi credentials received!" {
		t.Errorf("response = %q", resp)
	}

	if err := prov.GoToTokenManagement(ctx); err != nil {
		t.Fatalf("GoToTokenManagement: %v", err)
	}

	action := "add"
	tm, err := portal.NewTokenManagementController(page, portal.Text(adminToken), portal.FieldFunc(func() string { return action }))
	if err != nil {
		t.Fatal(err)
	}
	if err := tm.Submit(ctx); err != nil {
		t.Fatalf("token add: %v", err)
	}
	newToken, _ := view.last()
	if len(newToken) != auth.TokenLength {
		t.Fatalf("new token = %q", newToken)
	}

	action = "rotate"
	if err := tm.Submit(ctx); err != nil {
		t.Fatalf("token rotate: %v", err)
	}
	if resp, _ := view.last(); resp != "Invalid action" {
		t.Errorf("response = %q, want Invalid action", resp)
	}

	if err := tm.Back(ctx); err != nil {
		t.Fatalf("Back: %v", err)
	}

	want := []string{"/token_mgmt/ OK", "/ OK"}
	if len(*loads) != len(want) || (*loads)[0] != want[0] || (*loads)[1] != want[1] {
		t.Errorf("loads = %q, want %q", *loads, want)
	}

	// The generated token opens the stream gate on the data server.
	gatePage, gateView, gateLoads := client(t, dataURL)
	gate, err := portal.NewStreamGateController(gatePage, portal.Text(newToken))
	if err != nil {
		t.Fatal(err)
	}
	if err := gate.Submit(ctx); err != nil {
		t.Fatalf("gate: %v", err)
	}
	if resp, _ := gateView.last(); resp != "" {
		t.Errorf("gate wrote %q to the response element", resp)
	}
	if len(*gateLoads) != 1 || (*gateLoads)[0] != "/stream/ OK" {
		t.Errorf("gate loads = %q, want the stream page with its session", *gateLoads)
	}

	if err := prov.Quit(ctx); err != nil {
		t.Fatalf("Quit: %v", err)
	}
	if resp, _ := view.last(); resp != "Exiting config mode, you will be disconnected..." {
		t.Errorf("response = %q", resp)
	}
}

func TestPortal_GateLocked(t *testing.T) {
	_, dataURL := device(t)
	ctx := context.Background()

	page, view, loads := client(t, dataURL)
	gate, err := portal.NewStreamGateController(page, portal.Text("WrongToken00"))
	if err != nil {
		t.Fatal(err)
	}

	if err := gate.Submit(ctx); !errors.Is(err, portal.ErrLocked) {
		t.Fatalf("Submit() = %v, want ErrLocked", err)
	}
	if resp, _ := view.last(); resp != "Invalid admin token" {
		t.Errorf("response = %q", resp)
	}
	if len(*loads) != 0 {
		t.Errorf("navigated after refusal: %q", *loads)
	}
	if gate.State() != portal.StateLocked {
		t.Errorf("State = %v", gate.State())
	}
}

func TestPortal_TokenMgmtUnreachable(t *testing.T) {
	// The data server has no token management page.
	_, dataURL := device(t)

	page, view, loads := client(t, dataURL)
	prov, err := portal.NewProvisioningController(page, portal.Text(""), portal.Text(""), portal.Text(""))
	if err != nil {
		t.Fatal(err)
	}

	if err := prov.GoToTokenManagement(context.Background()); !errors.Is(err, portal.ErrNavigationRefused) {
		t.Fatalf("GoToTokenManagement() = %v, want ErrNavigationRefused", err)
	}
	if _, alert := view.last(); alert != portal.AlertTokenMgmtRefused {
		t.Errorf("alert = %q", alert)
	}
	if len(*loads) != 0 {
		t.Errorf("navigated: %q", *loads)
	}
}
