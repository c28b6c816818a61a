package telemetry

import "time"

// Event kinds.
const (
	KindWiFiProvisioned = "wifi_provisioned"
	KindTokenAdded      = "token_added"
	KindTokenRemoved    = "token_removed"
	KindTokenAction     = "token_action"
	KindGate            = "gate"
	KindQuit            = "config_quit"
	KindStream          = "stream_toggled"
	KindFlashlight      = "flashlight_toggled"
	KindNotFound        = "not_found"
)

// Outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeRefused = "refused"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Event is one portal occurrence.
type Event struct {
	Kind      string    `json:"kind"`
	Outcome   string    `json:"outcome"`
	Status    int       `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	DeviceID  string    `json:"device_id"`
	Timestamp time.Time `json:"timestamp"`
}
