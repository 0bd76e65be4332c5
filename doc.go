// Package framecodec stores arbitrary bytes in a sequence of black and white
// raster frames and recovers them again.
//
// # Frame Format
//
// A payload of N bytes becomes a bitstream of 32 + 8·N bits:
//   - N as an unsigned 32-bit big-endian integer, most significant bit first
//   - the payload bytes in order, each most significant bit first
//
// Every frame is FrameWidth x FrameHeight pixels, divided into square
// macropixels of MacropixelSize pixels a side. Each macropixel carries one
// bit: pure white is 1, pure black is 0. Macropixels are filled left to
// right, top to bottom, and frames are filled in order until the bitstream
// runs out. Cells of the last frame past the end of the stream are black
// and carry no meaning.
//
// There is no frame index inside a frame. The order of a frame sequence is
// the lexicographic order of its identities in the store, so stores name
// frames with zero-padded indexes (frame_0000.png, frame_0001.png, ...).
//
// On decode the top-left pixel of every macropixel is classified with the
// configured ThresholdPolicy. ThresholdMidpoint (channel > 128) is the
// default because frames usually pass through a lossy video encoder.
//
// # Basic Usage
//
// To encode into a directory of PNG frames:
//
//	dir := framestore.NewDir("frames")
//	n, err := framecodec.Encode(ctx, dir, payload)
//
// To decode them again:
//
//	payload, err := framecodec.Decode(ctx, dir)
//
// Both sides must use the same Config; see DefaultConfig and the Option
// functions.
package framecodec
