package framestore

import "fmt"

const (
	VersionV1 uint16 = 1

	archiveHeaderSizeV1 = 40
	recordHeaderSizeV1  = 16
)

// Magic is the 8-byte frame archive signature.
var Magic = [8]byte{'F', 'R', 'M', 'A', 'R', 'C', '\r', '\n'}

type Compression uint16

const (
	CompNone Compression = 0x0
	CompZIP  Compression = 0x1
	CompZSTD Compression = 0x2
	CompLZ4  Compression = 0x3
	CompBR   Compression = 0x4
)

const (
	recordFlagCompressionMask    uint16 = 0x000F
	recordFlagHasUncompressedLen uint16 = 0x0010
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZIP:
		return "zip"
	case CompZSTD:
		return "zstd"
	case CompLZ4:
		return "lz4"
	case CompBR:
		return "br"
	default:
		return "unknown"
	}
}

func (c Compression) valid() bool {
	switch c {
	case CompNone, CompZIP, CompZSTD, CompLZ4, CompBR:
		return true
	}
	return false
}

// ParseCompression accepts the names returned by Compression.String.
func ParseCompression(s string) (Compression, error) {
	for _, c := range []Compression{CompNone, CompZIP, CompZSTD, CompLZ4, CompBR} {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown compression %q", ErrInvalidPayload, s)
}
