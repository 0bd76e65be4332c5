package framecodec

import (
	"context"
	"fmt"
	"image"
	"sort"
)

// FrameSource lists and opens frames held by an external store. List may
// return identities in any order; the decoder imposes its own.
type FrameSource interface {
	List(ctx context.Context) ([]string, error)
	Open(ctx context.Context, id string) (image.Image, error)
}

// FrameSequence is a frame source put in decode order.
type FrameSequence struct {
	src  FrameSource
	ids  []string
	grid Grid
}

// Collect lists src and sorts the identities lexicographically. Stores
// must name frames so that this order is the encode order, for example
// with zero-padded indexes of a fixed width.
func Collect(ctx context.Context, src FrameSource, g Grid) (*FrameSequence, error) {
	ids, err := src.List(ctx)
	if err != nil {
		return nil, err
	}
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return nil, fmt.Errorf("%w: duplicate frame %q", ErrFormat, sorted[i])
		}
	}
	return &FrameSequence{src: src, ids: sorted, grid: g}, nil
}

// Len returns the number of frames.
func (s *FrameSequence) Len() int {
	return len(s.ids)
}

// IDs returns the frame identities in decode order.
func (s *FrameSequence) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Frame opens frame i and checks its dimensions. A frame of the wrong size
// is reported as a *FormatError.
func (s *FrameSequence) Frame(ctx context.Context, i int) (image.Image, error) {
	id := s.ids[i]
	img, err := s.src.Open(ctx, id)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	if b.Dx() != s.grid.Width || b.Dy() != s.grid.Height {
		return nil, &FormatError{
			Frame:      id,
			Width:      b.Dx(),
			Height:     b.Dy(),
			WantWidth:  s.grid.Width,
			WantHeight: s.grid.Height,
		}
	}
	return img, nil
}
