package framecodec

import (
	"context"
	"errors"
	"image"
	"io"
)

// FrameSink persists encoded frames. WriteFrame is called with index 0, 1,
// 2, ... in order; the sink decides how the index becomes a name.
type FrameSink interface {
	WriteFrame(ctx context.Context, index int, img image.Image) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(ctx context.Context, index int, img image.Image) error

func (f FrameSinkFunc) WriteFrame(ctx context.Context, index int, img image.Image) error {
	return f(ctx, index, img)
}

// Encode writes payload to sink as a sequence of frames and returns how
// many frames were written.
//
// The payload is prefixed with its length as a big-endian uint32 and
// expanded to one bit per macropixel, most significant bit first. Cells are
// filled left to right, top to bottom; white is 1 and black is 0. The last
// frame may be underfull, its unused cells are black. Even an empty payload
// produces one frame holding the header.
//
// Encode returns ErrConfig for an unusable raster format and
// ErrPrecondition when payload is 4 GiB or larger. Errors from sink are
// returned unchanged; frames already written are left in place.
func Encode(ctx context.Context, sink FrameSink, payload []byte, opts ...Option) (int, error) {
	cfg := newCodecConfig(opts)
	g, err := cfg.format.Grid()
	if err != nil {
		return 0, err
	}
	stream, err := NewBitStream(payload)
	if err != nil {
		return 0, err
	}

	written := 0
	if cfg.concurrency <= 1 {
		rz := NewRasterizer(stream, g)
		for {
			if err := ctx.Err(); err != nil {
				return written, err
			}
			i, img, err := rz.Next()
			if errors.Is(err, io.EOF) {
				return written, nil
			}
			if err != nil {
				return written, err
			}
			if err := sink.WriteFrame(ctx, i, img); err != nil {
				return written, err
			}
			written++
		}
	}

	n := g.Frames(stream.Len())
	render := func(_ context.Context, i int) (*image.Gray, error) {
		return Rasterize(stream.Chunk(i, g.Cells()), g), nil
	}
	emit := func(i int, img *image.Gray) error {
		if err := sink.WriteFrame(ctx, i, img); err != nil {
			return err
		}
		written++
		return nil
	}
	if err := runOrdered(ctx, n, cfg.concurrency, render, emit); err != nil {
		return written, err
	}
	return written, nil
}
