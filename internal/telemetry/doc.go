// Package telemetry records portal events.
//
// Handlers call Recorder.Record, which never blocks: events are queued and
// a single worker (Recorder.Run) logs each one, publishes it on
// camportal/events/{kind} and writes it to the portal_events measurement.
// Either sink may be absent. When the queue is full the event is dropped
// and a warning logged; the HTTP response is never delayed by telemetry.
//
// Events carry no tokens and no WiFi passwords. Detail is free text for
// non-secret context such as the SSID or the number of remaining tokens.
package telemetry
