// Package stream holds the camera's stream state and serves the MJPEG feed.
//
// State carries the two switches a viewer controls, the flashlight and
// whether streaming is on, and notifies subscribers of every change. The
// feed is a multipart/x-mixed-replace response with boundary "frame", one
// JPEG per part, paced by stream.frame_interval. It ends when streaming is
// switched off or the viewer disconnects.
//
// The device has no sensor here: SyntheticSource renders a test pattern
// that reflects the flashlight state, which is enough for the portal
// pages and for tests.
package stream
