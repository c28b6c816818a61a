// Package panel serves the portal's HTML pages, embedded in the binary.
//
// The configuration site has the WiFi provisioning page (/), the token
// management page (/token_mgmt/) and a shared stylesheet. The video site
// has the stream gate (/) and the stream page (/stream/), which shows the
// MJPEG feed, the flashlight and streaming switches, and follows state
// changes over the /stream/ws WebSocket.
//
// Pages are plain forms. Responses from the device are short text bodies
// that the browser shows as-is; the camportal command line client speaks
// the same protocol.
package panel
