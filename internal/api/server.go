package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/camportal/internal/auth"
	"github.com/nerrad567/camportal/internal/infrastructure/config"
	"github.com/nerrad567/camportal/internal/infrastructure/database"
	"github.com/nerrad567/camportal/internal/infrastructure/logging"
	"github.com/nerrad567/camportal/internal/stream"
	"github.com/nerrad567/camportal/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown. Open MJPEG feeds are cut off after it.
const gracefulShutdownTimeout = 10 * time.Second

// CredentialStore persists provisioned WiFi credentials.
type CredentialStore interface {
	Save(ctx context.Context, ssid, password string) error
}

// Deps holds the dependencies required by the portal servers.
type Deps struct {
	ConfigServer config.ServerConfig
	DataServer   config.ServerConfig
	Stream       config.StreamConfig
	Security     config.SecurityConfig
	DeviceID     string
	PagesDir     string // optional on-disk override for the embedded pages
	Logger       *logging.Logger
	DB           *database.DB // optional; reported by /health
	Tokens       auth.TokenRepository
	WiFi         CredentialStore
	State        *stream.State
	Frames       stream.FrameSource // defaults to a synthetic source
	Telemetry    *telemetry.Recorder
	Version      string
}

// Server runs the configuration server and the data server.
//
// The configuration server stops on its own after a POST /quit; the data
// server keeps running until Run's context is cancelled.
type Server struct {
	cfgServer  config.ServerConfig
	dataServer config.ServerConfig
	streamCfg  config.StreamConfig
	secCfg     config.SecurityConfig
	deviceID   string
	pagesDir   string
	logger     *logging.Logger
	db         *database.DB
	tokens     auth.TokenRepository
	wifi       CredentialStore
	state      *stream.State
	feed       *stream.Feed
	telemetry  *telemetry.Recorder
	version    string
	hub        *Hub

	configRouter http.Handler
	dataRouter   http.Handler

	quitOnce sync.Once
	quit     chan struct{}
}

// New creates the portal servers with the given dependencies.
//
// The servers do not listen until Run is called. Routers are built here so
// they can be exercised directly with httptest.
//
// Parameters:
//   - deps: Required dependencies (logger, token store, WiFi store, stream state)
//
// Returns:
//   - *Server: Configured server ready to run
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Tokens == nil {
		return nil, fmt.Errorf("token repository is required")
	}
	if deps.WiFi == nil {
		return nil, fmt.Errorf("wifi credential store is required")
	}
	if deps.State == nil {
		return nil, fmt.Errorf("stream state is required")
	}
	if deps.Security.JWT.Secret == "" {
		return nil, fmt.Errorf("stream session secret is required")
	}

	frames := deps.Frames
	if frames == nil {
		frames = stream.NewSyntheticSource(deps.State,
			deps.Stream.FrameWidth, deps.Stream.FrameHeight, deps.Stream.JPEGQuality)
	}
	interval := deps.Stream.FrameInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	s := &Server{
		cfgServer:  deps.ConfigServer,
		dataServer: deps.DataServer,
		streamCfg:  deps.Stream,
		secCfg:     deps.Security,
		deviceID:   deps.DeviceID,
		pagesDir:   deps.PagesDir,
		logger:     deps.Logger.With("component", "api"),
		db:         deps.DB,
		tokens:     deps.Tokens,
		wifi:       deps.WiFi,
		state:      deps.State,
		feed:       stream.NewFeed(deps.State, frames, interval),
		telemetry:  deps.Telemetry,
		version:    deps.Version,
		quit:       make(chan struct{}),
	}
	s.hub = NewHub(s.logger)
	s.configRouter = s.buildConfigRouter()
	s.dataRouter = s.buildDataRouter()

	return s, nil
}

// ConfigHandler returns the configuration server's router.
func (s *Server) ConfigHandler() http.Handler { return s.configRouter }

// DataHandler returns the data server's router.
func (s *Server) DataHandler() http.Handler { return s.dataRouter }

// QuitRequested is closed once a client has asked the configuration server
// to exit.
func (s *Server) QuitRequested() <-chan struct{} { return s.quit }

// requestQuit closes the quit channel at most once.
func (s *Server) requestQuit() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// Run listens on the enabled servers and blocks until ctx is cancelled or a
// listener fails. The WebSocket hub and the stream state relay run for the
// same lifetime.
//
// Returns:
//   - error: nil after a clean shutdown, otherwise the first listener error
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(gctx)
		return nil
	})
	changes, unsubscribe := s.state.Subscribe()
	defer unsubscribe()
	g.Go(func() error {
		s.relayState(gctx, changes)
		return nil
	})

	if s.cfgServer.Enabled {
		g.Go(func() error {
			return s.serve(gctx, "config", s.cfgServer, s.configRouter, s.quit)
		})
	}
	if s.dataServer.Enabled {
		g.Go(func() error {
			return s.serve(gctx, "data", s.dataServer, s.dataRouter, nil)
		})
	}

	return g.Wait()
}

// serve runs one HTTP server until ctx is done or stop is closed, then shuts
// it down gracefully. A nil stop channel never fires.
func (s *Server) serve(ctx context.Context, name string, cfg config.ServerConfig, handler http.Handler, stop <-chan struct{}) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("%s server listen on %s: %w", name, cfg.Addr(), err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout(),
		ReadHeaderTimeout: cfg.ReadTimeout(),
		WriteTimeout:      cfg.WriteTimeout(),
		IdleTimeout:       cfg.IdleTimeout(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(name+" server listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s server: %w", name, err)
	case <-ctx.Done():
	case <-stop:
		s.logger.Info(name + " server exiting on request")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info(name + " server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down %s server: %w", name, err)
	}
	return nil
}

// relayState forwards stream state changes to WebSocket clients.
func (s *Server) relayState(ctx context.Context, changes <-chan stream.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap := <-changes:
			s.hub.Broadcast(EventStateChanged, snap)
		}
	}
}

// HealthCheck verifies the database behind the servers is reachable.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.db == nil {
		return nil
	}
	if err := s.db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api health check: %w", err)
	}
	return nil
}
