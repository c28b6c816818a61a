// Package portal implements the client side of the camera portal: the
// controllers behind the provisioning page, the token management page and
// the stream gate page.
//
// Each controller is a small state machine driven by explicit events
// (Submit, Quit, Back, ...). Controllers receive everything they touch at
// construction:
//   - Field readers for form inputs, read once per event and never retained
//   - a View that displays response text, raises alerts and marks controls busy
//   - a Navigator that moves to another page
//   - a Transport that carries the request
//
// The same controllers therefore back a terminal client, a test double or
// any other front end.
//
// # Failures
//
// Every failure reaches the user through one funnel: transport failures show
// a fixed generic message (inline for submissions, as an alert for
// navigation probes) and are logged at error level. Controllers also return a
// sentinel error (ErrTransport, ErrNavigationRefused, ErrLocked, ...) so
// callers can branch with errors.Is.
//
// # Concurrency
//
// Controllers are safe for concurrent use. Each control allows one request in
// flight; a second activation returns ErrBusy without issuing a request.
package portal
