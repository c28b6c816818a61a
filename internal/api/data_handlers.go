package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nerrad567/camportal/internal/auth"
	"github.com/nerrad567/camportal/internal/stream"
	"github.com/nerrad567/camportal/internal/telemetry"
)

// healthCheckTimeout bounds the database probe behind /health.
const healthCheckTimeout = 2 * time.Second

// handleGate checks the admin token and, when valid, issues a stream
// session cookie. The gate page navigates to /stream/ on exactly 200.
func (s *Server) handleGate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, msgBadForm)
		return
	}

	tok, ok := s.authenticate(w, r, telemetry.KindGate)
	if !ok {
		return
	}

	session, expires, err := auth.IssueStreamSession(tok.ID, s.deviceID,
		s.secCfg.JWT.Secret, s.secCfg.JWT.SessionDuration())
	if err != nil {
		s.logger.Error("issuing stream session", "error", err)
		s.record(telemetry.KindGate, telemetry.OutcomeError, http.StatusInternalServerError, "")
		writeInternalError(w)
		return
	}

	http.SetCookie(w, auth.SessionCookie(session, expires))
	s.logger.Info("stream access granted", "token_id", tok.ID, "expires", expires.UTC().Format(time.RFC3339))
	s.record(telemetry.KindGate, telemetry.OutcomeOK, http.StatusOK, "")
	writeText(w, http.StatusOK, msgAccessGranted)
}

// handleFlashlight toggles the flashlight.
func (s *Server) handleFlashlight(w http.ResponseWriter, r *http.Request) {
	on := s.state.ToggleFlashlight()
	s.logger.Info("flashlight toggled", "on", on, "session", sessionID(r))
	s.record(telemetry.KindFlashlight, telemetry.OutcomeOK, http.StatusOK, onOff(on))
	writeJSON(w, http.StatusOK, map[string]bool{"flashlight": on})
}

// handleToggleStream toggles streaming. Open feeds end when it goes off.
func (s *Server) handleToggleStream(w http.ResponseWriter, r *http.Request) {
	on := s.state.ToggleStreaming()
	s.logger.Info("streaming toggled", "on", on, "session", sessionID(r))
	s.record(telemetry.KindStream, telemetry.OutcomeOK, http.StatusOK, onOff(on))
	writeJSON(w, http.StatusOK, map[string]bool{"streaming": on})
}

// handleVideoFeed serves the MJPEG feed until the viewer leaves or
// streaming is switched off.
func (s *Server) handleVideoFeed(w http.ResponseWriter, r *http.Request) {
	frames, err := s.feed.Serve(r.Context(), w)
	if errors.Is(err, stream.ErrStreamingDisabled) {
		writeText(w, http.StatusServiceUnavailable, msgStreamingDisabled)
		return
	}
	if err != nil {
		// Headers are already sent; the feed just ends.
		s.logger.Error("video feed failed", "error", err, "frames", frames)
		return
	}
	s.logger.Debug("video feed ended", "frames", frames)
}

// handleHealth returns device status for monitoring.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := s.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	snap := s.state.Snapshot()
	writeJSON(w, code, map[string]any{
		"status":     status,
		"version":    s.version,
		"device_id":  s.deviceID,
		"streaming":  snap.Streaming,
		"flashlight": snap.Flashlight,
		"ws_clients": s.hub.ClientCount(),
	})
}

// sessionID returns the ID of the verified stream session, or "" when
// sessions are not required.
func sessionID(r *http.Request) string {
	if claims, ok := r.Context().Value(ctxKeySession).(*auth.StreamClaims); ok {
		return claims.ID
	}
	return ""
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
