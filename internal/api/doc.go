// Package api implements the two HTTP servers of the camera portal device.
//
// This package provides:
//   - The configuration server: WiFi provisioning, admin token management, quit
//   - The data server: the stream gate, the session-protected stream routes
//     and a health endpoint
//   - A WebSocket hub pushing stream state changes to open stream pages
//   - Middleware stack (request ID, logging, recovery, body limit, session)
//
// # Lifecycle
//
//	server, err := api.New(deps)
//	err = server.Run(ctx) // blocks until ctx is cancelled
//
// A POST /quit answers, then stops the configuration server only.
//
// # Responses
//
// Every portal route answers with plain text that the pages display
// verbatim. Internal failures answer 500 "internal server error" and are
// logged; their cause never reaches the client. Tokens are never logged.
//
// # Stream sessions
//
// A successful gate submission sets an HS256 session cookie bound to the
// token that unlocked it. When stream.require_session is set, every
// /stream/ route demands the cookie, and removing the token revokes it.
package api
