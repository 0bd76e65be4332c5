package framecodec

import (
	"errors"
	"fmt"
)

var (
	ErrConfig          = errors.New("framecodec: invalid configuration")
	ErrFormat          = errors.New("framecodec: invalid frame")
	ErrTruncatedStream = errors.New("framecodec: truncated stream")
	ErrPrecondition    = errors.New("framecodec: precondition violated")
	ErrLimitExceeded   = errors.New("framecodec: limit exceeded")
)

// FormatError reports a frame whose dimensions do not match the agreed
// frame size. It matches ErrFormat under errors.Is.
type FormatError struct {
	Frame      string
	Width      int
	Height     int
	WantWidth  int
	WantHeight int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: frame %q is %dx%d, want %dx%d",
		ErrFormat, e.Frame, e.Width, e.Height, e.WantWidth, e.WantHeight)
}

func (e *FormatError) Unwrap() error { return ErrFormat }
