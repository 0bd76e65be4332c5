package framecodec

import "math"

// Limits bounds what the decoder will accept from a frame sequence. A
// corrupted header can declare any length up to 4 GiB. MaxPayloadLen
// rejects such headers outright; below it, Decode still refuses a header
// needing more bits than the frames hold before reserving any memory.
type Limits struct {
	MaxPayloadLen uint64 // bytes declared by the length header
	MaxFrames     int    // frames listed by the source
}

func defaultLimits() Limits {
	return Limits{
		MaxPayloadLen: math.MaxUint32,
		MaxFrames:     1_000_000,
	}
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxPayloadLen == 0 {
		l.MaxPayloadLen = d.MaxPayloadLen
	}
	if l.MaxFrames == 0 {
		l.MaxFrames = d.MaxFrames
	}
	return l
}
