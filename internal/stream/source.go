package stream

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"sync"
)

// FrameSource produces JPEG frames.
type FrameSource interface {
	Frame(ctx context.Context) ([]byte, error)
}

// SyntheticSource renders a moving test pattern. With the flashlight on
// the background is bright.
type SyntheticSource struct {
	state   *State
	width   int
	height  int
	quality int

	mu  sync.Mutex
	seq int
}

// NewSyntheticSource creates a source of width x height frames.
func NewSyntheticSource(state *State, width, height, quality int) *SyntheticSource {
	return &SyntheticSource{state: state, width: width, height: height, quality: quality}
}

// Frame renders and encodes the next frame.
func (s *SyntheticSource) Frame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	seq := s.seq
	s.seq++
	s.mu.Unlock()

	bg := color.RGBA{R: 24, G: 24, B: 32, A: 255}
	if s.state != nil && s.state.Snapshot().Flashlight {
		bg = color.RGBA{R: 230, G: 230, B: 210, A: 255}
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	barWidth := max(s.width/16, 1)
	barX := (seq * barWidth / 2) % s.width
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			if x >= barX && x < barX+barWidth {
				img.SetRGBA(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
				continue
			}
			img.SetRGBA(x, y, bg)
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	return buf.Bytes(), nil
}
