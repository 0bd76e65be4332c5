package framestore

import "errors"

var (
	ErrInvalidMagic       = errors.New("framestore: invalid magic")
	ErrUnsupportedVersion = errors.New("framestore: unsupported version")
	ErrInvalidHeader      = errors.New("framestore: invalid archive header")
	ErrInvalidRecord      = errors.New("framestore: invalid frame record")
	ErrInvalidPayload     = errors.New("framestore: invalid payload")
	ErrLimitExceeded      = errors.New("framestore: limit exceeded")
	ErrUnknownFrame       = errors.New("framestore: unknown frame")
	ErrIndexOverflow      = errors.New("framestore: frame index does not fit name width")
	ErrInconsistentNames  = errors.New("framestore: inconsistent frame names")
	ErrOutOfOrder         = errors.New("framestore: frame written out of order")
)
