package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/nerrad567/camportal/internal/auth"
	"github.com/nerrad567/camportal/internal/telemetry"
)

// maxTokenAttempts bounds retries when a generated token collides with a
// stored one.
const maxTokenAttempts = 3

// msgBadForm answers a form body that cannot be parsed.
const msgBadForm = "Invalid form data"

// handleProvision stores WiFi credentials submitted with a valid admin token.
// Missing fields are treated as empty strings.
func (s *Server) handleProvision(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, msgBadForm)
		return
	}

	if _, ok := s.authenticate(w, r, telemetry.KindWiFiProvisioned); !ok {
		return
	}

	ssid := r.PostForm.Get("ssid")
	if err := s.wifi.Save(r.Context(), ssid, r.PostForm.Get("password")); err != nil {
		s.logger.Error("storing wifi credentials", "error", err)
		s.record(telemetry.KindWiFiProvisioned, telemetry.OutcomeError, http.StatusInternalServerError, "")
		writeInternalError(w)
		return
	}

	s.logger.Info("wifi credentials received", "ssid", ssid)
	s.record(telemetry.KindWiFiProvisioned, telemetry.OutcomeOK, http.StatusOK, "")
	writeText(w, http.StatusOK, msgWiFiReceived)
}

// handleQuit answers and then asks Run to stop the configuration server.
// In-flight responses, including this one, complete before shutdown.
func (s *Server) handleQuit(w http.ResponseWriter, _ *http.Request) {
	s.logger.Info("exiting config mode")
	s.record(telemetry.KindQuit, telemetry.OutcomeOK, http.StatusOK, "")
	writeText(w, http.StatusOK, msgQuit)
	s.requestQuit()
}

// handleTokenAction adds or removes an admin token.
//
// The submitting token must be valid. "add" answers with a freshly
// generated token; "remove" removes the submitting token unless it is the
// last one.
func (s *Server) handleTokenAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeText(w, http.StatusBadRequest, msgBadForm)
		return
	}

	if _, ok := s.authenticate(w, r, telemetry.KindTokenAction); !ok {
		return
	}

	switch action := r.PostForm.Get("action"); action {
	case actionAdd:
		s.addToken(r.Context(), w)
	case actionRemove:
		s.removeToken(r.Context(), w, r.PostForm.Get("token"))
	default:
		s.record(telemetry.KindTokenAction, telemetry.OutcomeInvalid, http.StatusBadRequest, "")
		writeText(w, http.StatusBadRequest, msgInvalidAction)
	}
}

func (s *Server) addToken(ctx context.Context, w http.ResponseWriter) {
	for range maxTokenAttempts {
		raw, err := auth.GenerateToken()
		if err != nil {
			s.logger.Error("generating token", "error", err)
			break
		}

		tok, err := s.tokens.Create(ctx, raw)
		if errors.Is(err, auth.ErrTokenExists) {
			continue
		}
		if err != nil {
			s.logger.Error("storing token", "error", err)
			break
		}

		s.logger.Info("token added", "token_id", tok.ID, "fingerprint", auth.Fingerprint(raw))
		s.record(telemetry.KindTokenAdded, telemetry.OutcomeOK, http.StatusOK, "")
		writeText(w, http.StatusOK, raw)
		return
	}

	s.record(telemetry.KindTokenAdded, telemetry.OutcomeError, http.StatusInternalServerError, "")
	writeInternalError(w)
}

func (s *Server) removeToken(ctx context.Context, w http.ResponseWriter, raw string) {
	err := s.tokens.RemoveUnlessLast(ctx, raw)
	switch {
	case err == nil:
		s.logger.Info("token removed", "fingerprint", auth.Fingerprint(raw))
		s.record(telemetry.KindTokenRemoved, telemetry.OutcomeOK, http.StatusOK, "")
		writeText(w, http.StatusOK, msgTokenRemoved)
	case errors.Is(err, auth.ErrLastToken):
		s.record(telemetry.KindTokenRemoved, telemetry.OutcomeRefused, http.StatusForbidden, "last token")
		writeText(w, http.StatusForbidden, msgLastToken)
	case errors.Is(err, auth.ErrTokenInvalid):
		// Removed by a concurrent request since authentication.
		s.record(telemetry.KindTokenRemoved, telemetry.OutcomeRefused, http.StatusForbidden, "")
		writeText(w, http.StatusForbidden, msgInvalidToken)
	default:
		s.logger.Error("removing token", "error", err)
		s.record(telemetry.KindTokenRemoved, telemetry.OutcomeError, http.StatusInternalServerError, "")
		writeInternalError(w)
	}
}

// handleNotFound answers any unrouted request on either server.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn("route not found", "method", r.Method, "path", r.URL.Path)
	s.record(telemetry.KindNotFound, telemetry.OutcomeInvalid, http.StatusNotFound, r.URL.Path)
	writeText(w, http.StatusNotFound, msgNotFound)
}

// authenticate checks the "token" form field. On failure it writes the
// response, records kind as refused and returns false.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request, kind string) (*auth.AccessToken, bool) {
	tok, err := s.tokens.Authenticate(r.Context(), r.PostForm.Get("token"))
	switch {
	case err == nil:
		return tok, true
	case errors.Is(err, auth.ErrTokenInvalid):
		s.record(kind, telemetry.OutcomeRefused, http.StatusForbidden, "")
		writeText(w, http.StatusForbidden, msgInvalidToken)
	default:
		s.logger.Error("authenticating token", "error", err)
		s.record(kind, telemetry.OutcomeError, http.StatusInternalServerError, "")
		writeInternalError(w)
	}
	return nil, false
}

// record queues a telemetry event. A nil recorder discards it.
func (s *Server) record(kind, outcome string, status int, detail string) {
	s.telemetry.Record(telemetry.Event{
		Kind:    kind,
		Outcome: outcome,
		Status:  status,
		Detail:  detail,
	})
}
