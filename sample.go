package framecodec

import (
	"image"
	"image/color"
)

// Sample classifies the top-left pixel of every cell of img in row-major
// order. img must already have the grid's dimensions.
func Sample(img image.Image, g Grid, p ThresholdPolicy, c Channel) []bool {
	out := make([]bool, g.Cells())
	sampleInto(out, img, g, p, c)
	return out
}

// sampleInto is Sample writing into dst, which must hold g.Cells() bits.
func sampleInto(dst []bool, img image.Image, g Grid, p ThresholdPolicy, c Channel) {
	o := img.Bounds().Min
	switch src := img.(type) {
	case *image.Gray:
		for cell := range dst {
			x, y := g.Origin(cell)
			dst[cell] = p.bit(src.Pix[src.PixOffset(o.X+x, o.Y+y)])
		}
	case *image.RGBA:
		for cell := range dst {
			x, y := g.Origin(cell)
			i := src.PixOffset(o.X+x, o.Y+y)
			dst[cell] = p.bit(pick(c, src.Pix[i], src.Pix[i+1], src.Pix[i+2]))
		}
	case *image.NRGBA:
		for cell := range dst {
			x, y := g.Origin(cell)
			i := src.PixOffset(o.X+x, o.Y+y)
			dst[cell] = p.bit(pick(c, src.Pix[i], src.Pix[i+1], src.Pix[i+2]))
		}
	case *image.YCbCr:
		for cell := range dst {
			x, y := g.Origin(cell)
			yi := src.YOffset(o.X+x, o.Y+y)
			if c == ChannelLuma {
				dst[cell] = p.bit(src.Y[yi])
				continue
			}
			ci := src.COffset(o.X+x, o.Y+y)
			r, gr, b := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
			dst[cell] = p.bit(pick(c, r, gr, b))
		}
	default:
		for cell := range dst {
			x, y := g.Origin(cell)
			r, gr, b, _ := img.At(o.X+x, o.Y+y).RGBA()
			dst[cell] = p.bit(pick(c, uint8(r>>8), uint8(gr>>8), uint8(b>>8)))
		}
	}
}

func pick(c Channel, r, g, b uint8) uint8 {
	switch c {
	case ChannelGreen:
		return g
	case ChannelBlue:
		return b
	case ChannelLuma:
		y, _, _ := color.RGBToYCbCr(r, g, b)
		return y
	default:
		return r
	}
}
