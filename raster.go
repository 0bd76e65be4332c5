package framecodec

import (
	"image"
	"io"
)

const (
	black = 0x00
	white = 0xFF
)

// Rasterize renders bits into a new frame. Bit i colors cell i; cells past
// len(bits) stay black. bits longer than g.Cells() are truncated.
func Rasterize(bits []bool, g Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	rasterizeInto(img, bits, g)
	return img
}

// rasterizeInto renders bits into dst, which must be g.Width x g.Height
// with its origin at (0,0). Every pixel of dst is written.
func rasterizeInto(dst *image.Gray, bits []bool, g Grid) {
	cells := g.Cells()
	if len(bits) > cells {
		bits = bits[:cells]
	}
	for i := range dst.Pix {
		dst.Pix[i] = black
	}
	for cell, set := range bits {
		if !set {
			continue
		}
		x0, y0 := g.Origin(cell)
		for y := y0; y < y0+g.Size; y++ {
			row := dst.Pix[y*dst.Stride+x0 : y*dst.Stride+x0+g.Size]
			for x := range row {
				row[x] = white
			}
		}
	}
}

// Rasterizer emits the frames of a BitStream one at a time, reading the
// stream front to back.
type Rasterizer struct {
	bits  *BitReader
	grid  Grid
	buf   []bool
	next  int
	total int
}

// NewRasterizer returns a Rasterizer over stream.
func NewRasterizer(stream *BitStream, g Grid) *Rasterizer {
	return &Rasterizer{
		bits:  stream.Reader(),
		grid:  g,
		buf:   make([]bool, g.Cells()),
		total: g.Frames(stream.Len()),
	}
}

// FrameCount returns the number of frames the stream occupies.
func (r *Rasterizer) FrameCount() int {
	return r.total
}

// Next returns the next frame and its index, or io.EOF once every frame
// has been produced. Each frame is a new image.
func (r *Rasterizer) Next() (int, *image.Gray, error) {
	if r.next >= r.total {
		return 0, nil, io.EOF
	}
	n, err := r.bits.Read(r.buf)
	if err != nil {
		return 0, nil, err
	}
	idx := r.next
	r.next++
	return idx, Rasterize(r.buf[:n], r.grid), nil
}
