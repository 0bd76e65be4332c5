package framestore

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/logicossoftware/go-framecodec"
)

const archiveIDPrefix = "frame_"

// archiveID names record i. Ten digits cover every uint32 index, so
// lexicographic order is index order.
func archiveID(i int) string {
	return fmt.Sprintf("%s%010d", archiveIDPrefix, i)
}

// ArchiveWriter writes frames into a single archive stream: a fixed header
// followed by one record per frame holding its 8-bit grey raster.
type ArchiveWriter struct {
	w        io.Writer
	width    int
	height   int
	comp     Compression
	streamID uuid.UUID
	next     int
	scratch  *image.Gray
}

// NewArchiveWriter writes the archive header to w and returns a writer for
// width x height frames.
func NewArchiveWriter(w io.Writer, width, height int, opts ...ArchiveOption) (*ArchiveWriter, error) {
	cfg := archiveConfig{compression: CompZSTD, streamID: uuid.New()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidHeader, width, height)
	}
	if !cfg.compression.valid() {
		return nil, fmt.Errorf("%w: unknown compression %d", ErrInvalidPayload, cfg.compression)
	}
	h := archiveHeaderV1{
		Magic:       Magic,
		Version:     VersionV1,
		Compression: uint16(cfg.compression),
		Width:       uint32(width),
		Height:      uint32(height),
		StreamID:    cfg.streamID,
	}
	if err := writeArchiveHeader(w, h); err != nil {
		return nil, err
	}
	return &ArchiveWriter{
		w:        w,
		width:    width,
		height:   height,
		comp:     cfg.compression,
		streamID: cfg.streamID,
	}, nil
}

// StreamID returns the identifier written into the header.
func (a *ArchiveWriter) StreamID() uuid.UUID {
	return a.streamID
}

// Frames returns how many frames have been written.
func (a *ArchiveWriter) Frames() int {
	return a.next
}

// WriteFrame appends img as frame index. Indexes must arrive as 0, 1, 2, ...
func (a *ArchiveWriter) WriteFrame(ctx context.Context, index int, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if index != a.next {
		return fmt.Errorf("%w: got frame %d, want %d", ErrOutOfOrder, index, a.next)
	}
	b := img.Bounds()
	if b.Dx() != a.width || b.Dy() != a.height {
		return &framecodec.FormatError{
			Frame:      archiveID(index),
			Width:      b.Dx(),
			Height:     b.Dy(),
			WantWidth:  a.width,
			WantHeight: a.height,
		}
	}
	flags, payload, err := compressPayload(a.comp, a.raster(img))
	if err != nil {
		return err
	}
	rh := recordHeaderV1{
		Index:      uint32(index),
		Flags:      flags,
		PayloadLen: uint64(len(payload)),
	}
	if err := writeRecordHeader(a.w, rh); err != nil {
		return err
	}
	if _, err := a.w.Write(payload); err != nil {
		return err
	}
	a.next++
	return nil
}

// raster returns the grey pixels of img, tightly packed row by row.
func (a *ArchiveWriter) raster(img image.Image) []byte {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) && g.Stride == a.width {
		return g.Pix[:a.width*a.height]
	}
	if a.scratch == nil {
		a.scratch = image.NewGray(image.Rect(0, 0, a.width, a.height))
	}
	draw.Draw(a.scratch, a.scratch.Bounds(), img, img.Bounds().Min, draw.Src)
	return a.scratch.Pix
}

type archiveRecord struct {
	offset int64
	header recordHeaderV1
}

// Archive reads frames back out of an archive stream. It implements
// framecodec.FrameSource and is safe for concurrent Open calls.
type Archive struct {
	mu      sync.Mutex
	r       io.ReadSeeker
	header  archiveHeaderV1
	records []archiveRecord
}

// OpenArchive validates the header of r and indexes every frame record.
// Payloads are not read until Open.
func OpenArchive(r io.ReadSeeker, opts ...ArchiveOption) (*Archive, error) {
	cfg := archiveConfig{limits: defaultArchiveLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	h, err := readArchiveHeader(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: truncated", ErrInvalidHeader)
		}
		return nil, err
	}
	if err := validateArchiveHeader(h); err != nil {
		return nil, err
	}
	if uint64(h.Width)*uint64(h.Height) > uint64(cfg.limits.MaxFrameSize) {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrLimitExceeded, h.Width, h.Height)
	}

	a := &Archive{r: r, header: h}
	offset := int64(archiveHeaderSizeV1)
	for offset < size {
		if len(a.records) >= cfg.limits.MaxFrames {
			return nil, fmt.Errorf("%w: more than %d frames", ErrLimitExceeded, cfg.limits.MaxFrames)
		}
		rh, err := readRecordHeader(r)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: truncated record header at offset %d", ErrInvalidRecord, offset)
			}
			return nil, err
		}
		if err := validateRecordHeader(rh, uint32(len(a.records))); err != nil {
			return nil, err
		}
		if rh.PayloadLen > cfg.limits.MaxRecordLen {
			return nil, fmt.Errorf("%w: frame %d record of %d bytes", ErrLimitExceeded, rh.Index, rh.PayloadLen)
		}
		offset += recordHeaderSizeV1
		if uint64(size-offset) < rh.PayloadLen {
			return nil, fmt.Errorf("%w: frame %d payload truncated", ErrInvalidRecord, rh.Index)
		}
		a.records = append(a.records, archiveRecord{offset: offset, header: rh})
		offset += int64(rh.PayloadLen)
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Archive) Width() int               { return int(a.header.Width) }
func (a *Archive) Height() int              { return int(a.header.Height) }
func (a *Archive) Len() int                 { return len(a.records) }
func (a *Archive) Compression() Compression { return Compression(a.header.Compression) }

// StreamID returns the identifier the writer stored in the header.
func (a *Archive) StreamID() uuid.UUID {
	return uuid.UUID(a.header.StreamID)
}

// List returns the frame identities in index order.
func (a *Archive) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := make([]string, len(a.records))
	for i := range a.records {
		ids[i] = archiveID(i)
	}
	return ids, nil
}

// Open decompresses the frame named id.
func (a *Archive) Open(ctx context.Context, id string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, err := a.index(id)
	if err != nil {
		return nil, err
	}
	rec := a.records[i]
	payload := make([]byte, rec.header.PayloadLen)

	a.mu.Lock()
	_, err = a.r.Seek(rec.offset, io.SeekStart)
	if err == nil {
		_, err = io.ReadFull(a.r, payload)
	}
	a.mu.Unlock()
	if err != nil {
		return nil, err
	}

	w, h := a.Width(), a.Height()
	pix, err := decompressPayload(rec.header.compression(), rec.header.Flags, payload, uint64(w)*uint64(h))
	if err != nil {
		return nil, fmt.Errorf("frame %s: %w", id, err)
	}
	return &image.Gray{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}, nil
}

func (a *Archive) index(id string) (int, error) {
	digits, ok := strings.CutPrefix(id, archiveIDPrefix)
	if !ok || len(digits) != 10 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFrame, id)
	}
	i, err := strconv.Atoi(digits)
	if err != nil || i < 0 || i >= len(a.records) {
		return 0, fmt.Errorf("%w: %q", ErrUnknownFrame, id)
	}
	return i, nil
}
