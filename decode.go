package framecodec

import (
	"context"
	"fmt"
)

// Decode reads the frames of src in lexicographic identity order and
// returns the payload they carry.
//
// The decoding process:
//  1. Lists and orders the frames (see Collect)
//  2. Opens each frame and checks it is exactly the configured size
//  3. Samples the top-left pixel of every macropixel into a bit
//  4. Reads the 32-bit length header and packs the payload bits into bytes
//
// Frames after the one completing the payload are opened only to check
// their size; their pixels are ignored, so padding frames appended by a
// video tool do not affect the result.
//
// Decode returns a *FormatError (matching ErrFormat) for a frame of the
// wrong size, ErrTruncatedStream if the frames hold fewer bits than the
// header declares, and ErrLimitExceeded if the header or the frame count
// exceeds the configured Limits. No partial payload is ever returned.
func Decode(ctx context.Context, src FrameSource, opts ...Option) ([]byte, error) {
	cfg := newCodecConfig(opts)
	g, err := cfg.format.Grid()
	if err != nil {
		return nil, err
	}
	seq, err := Collect(ctx, src, g)
	if err != nil {
		return nil, err
	}
	if seq.Len() > cfg.limits.MaxFrames {
		return nil, fmt.Errorf("%w: %d frames, limit %d", ErrLimitExceeded, seq.Len(), cfg.limits.MaxFrames)
	}

	capacity := uint64(seq.Len()) * uint64(g.Cells())
	r := NewReassembler(cfg.limits.MaxPayloadLen, capacity)
	last := seq.Len() - 1
	sample := func(ctx context.Context, i int) ([]bool, error) {
		img, err := seq.Frame(ctx, i)
		if err != nil {
			return nil, err
		}
		return Sample(img, g, cfg.format.Threshold, cfg.format.Channel), nil
	}
	feed := func(i int, bits []bool) error {
		if err := r.Write(bits); err != nil {
			return err
		}
		if r.State() == StateComplete {
			last = i
			return errStop
		}
		return nil
	}
	if err := runOrdered(ctx, seq.Len(), cfg.concurrency, sample, feed); err != nil {
		return nil, err
	}
	// Trailing frames carry no bits but must still have the agreed size.
	for i := last + 1; i < seq.Len(); i++ {
		if _, err := seq.Frame(ctx, i); err != nil {
			return nil, err
		}
	}
	return r.Payload()
}
