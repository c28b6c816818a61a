package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/camportal/internal/panel"
)

// buildConfigRouter creates the configuration server router (port 8080 on
// the device): WiFi provisioning, token management and quit.
func (s *Server) buildConfigRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware("config"))
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	pages := panel.Handler(panel.ConfigSite, s.pagesDir)
	r.Method(http.MethodGet, "/", pages)
	r.Method(http.MethodGet, "/style.css", pages)
	r.Method(http.MethodGet, "/token_mgmt/", pages)
	r.Get("/token_mgmt", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/token_mgmt/", http.StatusMovedPermanently)
	})

	r.Post("/submit", s.handleProvision)
	r.Post("/quit", s.handleQuit)
	r.Post("/token_mgmt/submit", s.handleTokenAction)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return r
}

// buildDataRouter creates the data server router (port 80 on the device):
// the stream gate and the session-protected stream routes.
func (s *Server) buildDataRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware("data"))
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	pages := panel.Handler(panel.VideoSite, s.pagesDir)
	r.Method(http.MethodGet, "/", pages)
	r.Method(http.MethodGet, "/style.css", pages)
	r.Get("/health", s.handleHealth)

	r.Post("/submit", s.handleGate)

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Method(http.MethodGet, "/stream/", pages)
		r.Post("/stream/flashlight", s.handleFlashlight)
		r.Post("/stream/toggle_stream", s.handleToggleStream)
		r.Get("/stream/video_feed", s.handleVideoFeed)
		r.Get("/stream/ws", s.handleWebSocket)
	})
	r.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/stream/", http.StatusMovedPermanently)
	})

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	return r
}
