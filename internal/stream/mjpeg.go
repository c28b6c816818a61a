package stream

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"
)

// Boundary separates frames in the feed.
const Boundary = "frame"

// ContentType is the feed's response content type.
const ContentType = "multipart/x-mixed-replace; boundary=" + Boundary

// Feed writes frames from a source while streaming is on.
type Feed struct {
	state    *State
	source   FrameSource
	interval time.Duration
}

// NewFeed creates a Feed emitting one frame per interval.
func NewFeed(state *State, source FrameSource, interval time.Duration) *Feed {
	return &Feed{state: state, source: source, interval: interval}
}

// Serve streams frames to w until ctx is done or streaming is switched
// off. It returns ErrStreamingDisabled, before writing anything, when
// streaming is already off; the caller answers 503 in that case.
//
// Returns the number of frames written.
func (f *Feed) Serve(ctx context.Context, w http.ResponseWriter) (int, error) {
	changes, cancel := f.state.Subscribe()
	defer cancel()

	if !f.state.Snapshot().Streaming {
		return 0, ErrStreamingDisabled
	}

	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Cache-Control", "no-cache, no-store")
	w.WriteHeader(http.StatusOK)

	mw := multipart.NewWriter(w)
	if err := mw.SetBoundary(Boundary); err != nil {
		return 0, fmt.Errorf("setting boundary: %w", err)
	}
	defer mw.Close() //nolint:errcheck // closing boundary is best effort; the viewer may be gone
	flusher, _ := w.(http.Flusher)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	frames := 0
	for {
		frame, err := f.source.Frame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return frames, nil
			}
			return frames, err
		}

		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":   {"image/jpeg"},
			"Content-Length": {strconv.Itoa(len(frame))},
		})
		if err != nil {
			return frames, nil // viewer went away
		}
		if _, err := part.Write(frame); err != nil {
			return frames, nil
		}
		if flusher != nil {
			flusher.Flush()
		}
		frames++

		select {
		case <-ctx.Done():
			return frames, nil
		case s := <-changes:
			if !s.Streaming {
				return frames, nil
			}
		case <-ticker.C:
		}
	}
}
