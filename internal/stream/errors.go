package stream

import "errors"

var (
	// ErrStreamingDisabled is returned when the feed is requested while
	// streaming is off.
	ErrStreamingDisabled = errors.New("stream: streaming is disabled")

	// ErrUnknownCommand is returned for a remote command on an unknown target.
	ErrUnknownCommand = errors.New("stream: unknown command target")
)
