package api

import (
	"encoding/json"
	"net/http"
)

// Response texts. The portal pages display these verbatim.
const (
	msgInvalidToken      = "Invalid admin token"
	msgWiFiReceived      = "WiFi credentials received!"
	msgQuit              = "Exiting config mode, you will be disconnected..."
	msgTokenRemoved      = "Token removed"
	msgLastToken         = "Cannot remove token: no more tokens left!"
	msgInvalidAction     = "Invalid action"
	msgNotFound          = "Not found"
	msgAccessGranted     = "Access granted"
	msgSessionRequired   = "Stream session required"
	msgStreamingDisabled = "Streaming is disabled"
	msgInternal          = "internal server error"
)

// Token management actions.
const (
	actionAdd    = "add"
	actionRemove = "remove"
)

// writeText writes a plain text response with the given status code.
func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(msg))
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeInternalError writes a 500 response without leaking the cause.
func writeInternalError(w http.ResponseWriter) {
	writeText(w, http.StatusInternalServerError, msgInternal)
}
