package framecodec

import (
	"errors"
	"io"
	"math"
	"testing"
)

// bitsOf expands b most significant bit first.
func bitsOf(b ...byte) []bool {
	out := make([]bool, 0, 8*len(b))
	for _, v := range b {
		for i := 7; i >= 0; i-- {
			out = append(out, v>>uint(i)&1 == 1)
		}
	}
	return out
}

func equalBits(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBitStreamLayout(t *testing.T) {
	s, err := NewBitStream([]byte("AB"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 48 {
		t.Fatalf("Len() = %d, want 48", s.Len())
	}
	if s.PayloadLen() != 2 {
		t.Fatalf("PayloadLen() = %d", s.PayloadLen())
	}

	want := bitsOf(0, 0, 0, 2, 'A', 'B')
	r := s.Reader()
	got := make([]bool, len(want)+8)
	n, err := r.Read(got)
	if err != nil || n != len(want) {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	if !equalBits(got[:n], want) {
		t.Fatalf("bits = %v", got[:n])
	}
	if _, err := r.Read(got); !errors.Is(err, io.EOF) {
		t.Fatalf("after last bit: %v", err)
	}
}

func TestBitStreamEmptyPayload(t *testing.T) {
	s, err := NewBitStream(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != HeaderBits {
		t.Fatalf("Len() = %d", s.Len())
	}
	got := make([]bool, 40)
	n, err := s.Reader().Read(got)
	if err != nil || n != HeaderBits {
		t.Fatalf("Read() = %d, %v", n, err)
	}
	for i, b := range got[:n] {
		if b {
			t.Fatalf("header bit %d set", i)
		}
	}
}

func TestBitStreamChunk(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01}
	s, err := NewBitStream(payload)
	if err != nil {
		t.Fatal(err)
	}
	all := bitsOf(0, 0, 0, 5, 0xDE, 0xAD, 0xBE, 0xEF, 0x01)

	// Unaligned chunk sizes cross byte and header boundaries.
	for _, cells := range []int{1, 5, 7, 13, 32, 64, 100} {
		var joined []bool
		for i := 0; ; i++ {
			c := s.Chunk(i, cells)
			if c == nil {
				break
			}
			if len(c) > cells {
				t.Fatalf("cells=%d: chunk %d has %d bits", cells, i, len(c))
			}
			joined = append(joined, c...)
		}
		if !equalBits(joined, all) {
			t.Fatalf("cells=%d: chunks do not reassemble the stream", cells)
		}
	}
}

func TestBitReaderReadEOF(t *testing.T) {
	s, _ := NewBitStream([]byte{0xFF})
	r := s.Reader()
	buf := make([]bool, 30)
	if n, err := r.Read(buf); n != 30 || err != nil {
		t.Fatalf("first Read = %d, %v", n, err)
	}
	if n, err := r.Read(buf); n != 10 || err != nil {
		t.Fatalf("second Read = %d, %v", n, err)
	}
	if n, err := r.Read(buf); n != 0 || !errors.Is(err, io.EOF) {
		t.Fatalf("third Read = %d, %v", n, err)
	}
}

func TestCheckPayloadLen(t *testing.T) {
	if err := checkPayloadLen(math.MaxUint32); err != nil {
		t.Fatalf("max length rejected: %v", err)
	}
	if err := checkPayloadLen(math.MaxUint32 + 1); !errors.Is(err, ErrPrecondition) {
		t.Fatalf("got %v, want ErrPrecondition", err)
	}
}
