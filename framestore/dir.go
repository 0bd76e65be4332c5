package framestore

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/logicossoftware/go-framecodec"
)

// Dir stores frames as loose image files named <prefix><index><ext>, the
// index zero-padded to a fixed width so that sorting names sorts frames.
// It implements framecodec.FrameSink and framecodec.FrameSource.
type Dir struct {
	path   string
	prefix string
	ext    string
	width  int
	names  *regexp.Regexp
}

// NewDir returns a store rooted at path. The directory is created on the
// first WriteFrame.
func NewDir(path string, opts ...DirOption) *Dir {
	cfg := dirConfig{prefix: "frame_", ext: ".png", width: 4}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.width < 1 {
		cfg.width = 1
	}
	return &Dir{
		path:   path,
		prefix: cfg.prefix,
		ext:    strings.ToLower(cfg.ext),
		width:  cfg.width,
		names:  regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.prefix) + `([0-9]+)` + regexp.QuoteMeta(strings.ToLower(cfg.ext)) + `$`),
	}
}

// Path returns the directory.
func (d *Dir) Path() string {
	return d.path
}

// Pattern returns the printf-style path template of the frames, the form
// ffmpeg's image2 muxer and demuxer expect.
func (d *Dir) Pattern() string {
	return filepath.Join(d.path, fmt.Sprintf("%s%%0%dd%s", d.prefix, d.width, d.ext))
}

// Name returns the file name of frame index.
func (d *Dir) Name(index int) (string, error) {
	digits := strconv.Itoa(index)
	if index < 0 || len(digits) > d.width {
		return "", fmt.Errorf("%w: %d with width %d", ErrIndexOverflow, index, d.width)
	}
	return d.prefix + strings.Repeat("0", d.width-len(digits)) + digits + d.ext, nil
}

// WriteFrame encodes img to the file for index, replacing any old file.
func (d *Dir) WriteFrame(ctx context.Context, index int, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := d.Name(index)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(d.path, name))
	if err != nil {
		return err
	}
	defer file.Close()

	switch d.ext {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 100})
	default:
		err = png.Encode(file, img)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// List returns the frame names in the directory. Files that do not look
// like frames are ignored; frames whose index width differs from the
// configured one are an error, since they would break name ordering.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := d.names.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if len(m[1]) != d.width {
			return nil, fmt.Errorf("%w: %q has %d index digits, want %d", ErrInconsistentNames, e.Name(), len(m[1]), d.width)
		}
		out = append(out, e.Name())
	}
	return out, nil
}

// Open decodes the frame file id. Files that are not a decodable image are
// reported as framecodec.ErrFormat.
func (d *Dir) Open(ctx context.Context, id string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.names.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrame, id)
	}
	f, err := os.Open(filepath.Join(d.path, id))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", framecodec.ErrFormat, id, err)
	}
	return img, nil
}

// Clear removes every frame file from the directory.
func (d *Dir) Clear(ctx context.Context) error {
	entries, err := os.ReadDir(d.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.IsDir() || !d.names.MatchString(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(d.path, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
