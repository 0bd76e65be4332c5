package framecodec

import (
	"bytes"
	"fmt"

	"github.com/icza/bitio"
)

// State is the progress of a Reassembler.
type State uint8

const (
	StateAwaitingHeader State = iota
	StateAwaitingPayloadBits
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAwaitingHeader:
		return "awaiting-header"
	case StateAwaitingPayloadBits:
		return "awaiting-payload-bits"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// maxPrealloc bounds the buffer reserved up front. Larger payloads grow as
// their bits arrive.
const maxPrealloc = 1 << 20

// Reassembler rebuilds a payload from the bits sampled off a frame
// sequence. Feed it bits in frame order with Write, then call Payload.
// Bits past the declared payload are discarded.
type Reassembler struct {
	state      State
	maxPayload uint64
	available  uint64 // bits the source can supply, 0 if unknown

	header     uint32
	headerBits int

	want uint64 // payload bits declared by the header
	got  uint64

	buf bytes.Buffer
	w   *bitio.Writer
	err error
}

// NewReassembler returns a Reassembler that refuses headers declaring more
// than maxPayload bytes. Zero means the format maximum.
//
// available is the number of bits the caller can ever supply, header
// included. A header that needs more fails with ErrTruncatedStream before
// any payload memory is reserved. Zero means unknown.
func NewReassembler(maxPayload, available uint64) *Reassembler {
	if maxPayload == 0 {
		maxPayload = maxPayloadLen
	}
	return &Reassembler{maxPayload: maxPayload, available: available}
}

// State reports where the reassembler is.
func (r *Reassembler) State() State {
	return r.state
}

// PayloadLen returns the length declared by the header. It is only
// meaningful once the header has been read.
func (r *Reassembler) PayloadLen() uint32 {
	return r.header
}

// Write consumes bits. It returns an error once the reassembler has failed.
func (r *Reassembler) Write(bits []bool) error {
	for len(bits) > 0 {
		switch r.state {
		case StateAwaitingHeader:
			for len(bits) > 0 && r.headerBits < HeaderBits {
				r.header <<= 1
				if bits[0] {
					r.header |= 1
				}
				r.headerBits++
				bits = bits[1:]
			}
			if r.headerBits == HeaderBits {
				if err := r.startPayload(); err != nil {
					return err
				}
			}
		case StateAwaitingPayloadBits:
			n := r.want - r.got
			if uint64(len(bits)) < n {
				n = uint64(len(bits))
			}
			for _, b := range bits[:n] {
				if err := r.w.WriteBool(b); err != nil {
					return r.fail(err)
				}
			}
			r.got += n
			bits = bits[n:]
			if r.got == r.want {
				if err := r.finish(); err != nil {
					return err
				}
			}
		case StateComplete:
			return nil
		case StateFailed:
			return r.err
		}
	}
	return nil
}

func (r *Reassembler) startPayload() error {
	if uint64(r.header) > r.maxPayload {
		return r.fail(fmt.Errorf("%w: header declares %d bytes, limit %d", ErrLimitExceeded, r.header, r.maxPayload))
	}
	r.want = 8 * uint64(r.header)
	if r.available > 0 && HeaderBits+r.want > r.available {
		return r.fail(fmt.Errorf("%w: header declares %d bits, source holds %d",
			ErrTruncatedStream, HeaderBits+r.want, r.available))
	}
	r.buf.Grow(int(min(uint64(r.header), maxPrealloc)))
	r.w = bitio.NewWriter(&r.buf)
	r.state = StateAwaitingPayloadBits
	if r.want == 0 {
		return r.finish()
	}
	return nil
}

func (r *Reassembler) finish() error {
	// want is a whole number of bytes, so Close never pads.
	if err := r.w.Close(); err != nil {
		return r.fail(err)
	}
	r.state = StateComplete
	return nil
}

func (r *Reassembler) fail(err error) error {
	r.state = StateFailed
	r.err = err
	return err
}

// Payload returns the reassembled bytes. It fails with ErrTruncatedStream
// if the header or any declared payload bit is missing.
func (r *Reassembler) Payload() ([]byte, error) {
	switch r.state {
	case StateComplete:
		out := r.buf.Bytes()
		if out == nil {
			out = []byte{}
		}
		return out, nil
	case StateFailed:
		return nil, r.err
	case StateAwaitingHeader:
		return nil, r.fail(fmt.Errorf("%w: %d of %d header bits", ErrTruncatedStream, r.headerBits, HeaderBits))
	default:
		return nil, r.fail(fmt.Errorf("%w: %d of %d payload bits", ErrTruncatedStream, r.got, r.want))
	}
}

// Reassemble decodes a complete bit sequence in one call.
func Reassemble(bits []bool) ([]byte, error) {
	r := NewReassembler(0, uint64(len(bits)))
	if err := r.Write(bits); err != nil {
		return nil, err
	}
	return r.Payload()
}
