package stream

import (
	"bytes"
	"context"
	"errors"
	"image/jpeg"
	"io"
	"mime"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSyntheticSource_Frame(t *testing.T) {
	state := NewState()
	src := NewSyntheticSource(state, 64, 48, 70)

	frame, err := src.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame() error = %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(frame))
	if err != nil {
		t.Fatalf("frame is not a JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("frame size = %dx%d, want 64x48", b.Dx(), b.Dy())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Frame(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Frame() on cancelled ctx error = %v", err)
	}
}

func TestFeed_Disabled(t *testing.T) {
	state := NewState()
	state.SetStreaming(false)
	feed := NewFeed(state, NewSyntheticSource(state, 8, 8, 50), 10*time.Millisecond)

	rec := httptest.NewRecorder()
	n, err := feed.Serve(context.Background(), rec)
	if !errors.Is(err, ErrStreamingDisabled) {
		t.Fatalf("Serve() error = %v, want ErrStreamingDisabled", err)
	}
	if n != 0 || rec.Body.Len() != 0 {
		t.Errorf("Serve() wrote %d frames / %d bytes while disabled", n, rec.Body.Len())
	}
}

func TestFeed_StopsWhenStreamingOff(t *testing.T) {
	state := NewState()
	feed := NewFeed(state, NewSyntheticSource(state, 16, 16, 50), 5*time.Millisecond)

	go func() {
		time.Sleep(40 * time.Millisecond)
		state.SetStreaming(false)
	}()

	rec := httptest.NewRecorder()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := feed.Serve(ctx, rec)
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Serve() ran until the timeout instead of stopping with streaming")
	}
	if n < 1 {
		t.Fatalf("Serve() wrote %d frames, want at least 1", n)
	}

	mediaType, params, err := mime.ParseMediaType(rec.Header().Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	if mediaType != "multipart/x-mixed-replace" || params["boundary"] != Boundary {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}

	mr := multipart.NewReader(rec.Body, Boundary)
	parts := 0
	for {
		p, err := mr.NextPart()
		if err != nil {
			break
		}
		if p.Header.Get("Content-Type") != "image/jpeg" {
			t.Errorf("part Content-Type = %q", p.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(p) //nolint:errcheck // checked by decode below
		if _, err := jpeg.Decode(bytes.NewReader(body)); err != nil {
			t.Errorf("part %d is not a JPEG: %v", parts, err)
		}
		parts++
	}
	if parts != n {
		t.Errorf("parsed %d parts, Serve() reported %d", parts, n)
	}
}

func TestFeed_StopsOnContextDone(t *testing.T) {
	state := NewState()
	feed := NewFeed(state, NewSyntheticSource(state, 8, 8, 50), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	n, err := feed.Serve(ctx, httptest.NewRecorder())
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Serve() wrote %d frames, want 1 before the first tick", n)
	}
}
