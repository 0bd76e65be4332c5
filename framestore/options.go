package framestore

import "github.com/google/uuid"

// ArchiveLimits bounds what OpenArchive accepts.
type ArchiveLimits struct {
	MaxFrameSize uint32 // pixels per frame, width x height
	MaxFrames    int
	MaxRecordLen uint64 // stored payload length, compressed
}

func defaultArchiveLimits() ArchiveLimits {
	return ArchiveLimits{
		MaxFrameSize: 7680 * 4320,
		MaxFrames:    1_000_000,
		MaxRecordLen: 64 << 20,
	}
}

func (l ArchiveLimits) withDefaults() ArchiveLimits {
	d := defaultArchiveLimits()
	if l.MaxFrameSize == 0 {
		l.MaxFrameSize = d.MaxFrameSize
	}
	if l.MaxFrames == 0 {
		l.MaxFrames = d.MaxFrames
	}
	if l.MaxRecordLen == 0 {
		l.MaxRecordLen = d.MaxRecordLen
	}
	return l
}

type archiveConfig struct {
	compression Compression
	streamID    uuid.UUID
	limits      ArchiveLimits
}

type ArchiveOption func(*archiveConfig)

// WithCompression selects how frame rasters are stored. Default CompZSTD.
func WithCompression(comp Compression) ArchiveOption {
	return func(c *archiveConfig) { c.compression = comp }
}

// WithStreamID sets the identifier written into the archive header instead
// of a random one.
func WithStreamID(id uuid.UUID) ArchiveOption {
	return func(c *archiveConfig) { c.streamID = id }
}

func WithArchiveLimits(l ArchiveLimits) ArchiveOption {
	return func(c *archiveConfig) { c.limits = l }
}

type dirConfig struct {
	prefix string
	ext    string
	width  int
}

type DirOption func(*dirConfig)

// WithPrefix sets the file name prefix. Default "frame_".
func WithPrefix(p string) DirOption {
	return func(c *dirConfig) { c.prefix = p }
}

// WithExtension sets the file extension, ".png" or ".jpg". Default ".png".
func WithExtension(ext string) DirOption {
	return func(c *dirConfig) { c.ext = ext }
}

// WithIndexWidth sets the number of zero-padded index digits. Default 4.
func WithIndexWidth(n int) DirOption {
	return func(c *dirConfig) { c.width = n }
}
