package framecodec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/icza/bitio"
)

// HeaderBits is the size of the payload length header.
const HeaderBits = 32

// maxPayloadLen is the largest payload the 32-bit header can describe.
const maxPayloadLen = math.MaxUint32

// BitStream is the logical bit sequence for a payload: the payload length
// as a big-endian uint32 followed by the payload bytes, every byte most
// significant bit first. It never copies the payload.
type BitStream struct {
	header  [4]byte
	payload []byte
}

// NewBitStream frames payload. The caller must not modify payload while the
// stream is in use.
func NewBitStream(payload []byte) (*BitStream, error) {
	if err := checkPayloadLen(uint64(len(payload))); err != nil {
		return nil, err
	}
	s := &BitStream{payload: payload}
	binary.BigEndian.PutUint32(s.header[:], uint32(len(payload)))
	return s, nil
}

func checkPayloadLen(n uint64) error {
	if n > maxPayloadLen {
		return fmt.Errorf("%w: payload of %d bytes does not fit the 32-bit length header", ErrPrecondition, n)
	}
	return nil
}

// Len returns the number of bits in the stream.
func (s *BitStream) Len() uint64 {
	return HeaderBits + 8*uint64(len(s.payload))
}

// PayloadLen returns the length written into the header.
func (s *BitStream) PayloadLen() uint32 {
	return binary.BigEndian.Uint32(s.header[:])
}

// Reader returns a sequential reader positioned at the first bit. Each call
// starts over.
func (s *BitStream) Reader() *BitReader {
	return s.readerAt(0)
}

// Chunk returns the bits of frame index for frames of the given cell
// count. The last frame's chunk may be shorter than cells.
func (s *BitStream) Chunk(index, cells int) []bool {
	start := uint64(index) * uint64(cells)
	if start >= s.Len() {
		return nil
	}
	n := s.Len() - start
	if n > uint64(cells) {
		n = uint64(cells)
	}
	out := make([]bool, n)
	got, _ := s.readerAt(start).Read(out)
	return out[:got]
}

func (s *BitStream) readerAt(bit uint64) *BitReader {
	byteOff := bit / 8
	var src io.Reader
	if byteOff < uint64(len(s.header)) {
		src = io.MultiReader(bytes.NewReader(s.header[byteOff:]), bytes.NewReader(s.payload))
	} else {
		src = bytes.NewReader(s.payload[byteOff-uint64(len(s.header)):])
	}
	br := &BitReader{r: bitio.NewReader(src)}
	if skip := uint8(bit % 8); skip > 0 {
		// The skipped bits belong to a byte that exists, so this cannot fail.
		_, _ = br.r.ReadBits(skip)
	}
	return br
}

// BitReader yields the bits of a BitStream in order.
type BitReader struct {
	r *bitio.Reader
}

// Read fills dst with the next bits and returns how many were read. It
// returns io.EOF when no bits remain.
func (r *BitReader) Read(dst []bool) (int, error) {
	for i := range dst {
		b, err := r.r.ReadBool()
		if err != nil {
			if errors.Is(err, io.EOF) && i > 0 {
				return i, nil
			}
			return i, err
		}
		dst[i] = b
	}
	return len(dst), nil
}
