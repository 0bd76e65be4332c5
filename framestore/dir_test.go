package framestore

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/logicossoftware/go-framecodec"
)

func TestDirWriteListOpen(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "frames")
	d := NewDir(root)

	for i := 0; i < 3; i++ {
		if err := d.WriteFrame(ctx, i, testFrame(8, 4, i)); err != nil {
			t.Fatalf("WriteFrame(%d): %v", i, err)
		}
	}
	// Unrelated entries are ignored.
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "frame_0009.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	ids, err := d.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"frame_0000.png": true, "frame_0001.png": true, "frame_0002.png": true}
	if len(ids) != len(want) {
		t.Fatalf("List() = %v", ids)
	}
	for _, id := range ids {
		if !want[id] {
			t.Fatalf("unexpected frame %q", id)
		}
	}

	img, err := d.Open(ctx, "frame_0002.png")
	if err != nil {
		t.Fatal(err)
	}
	wantImg := testFrame(8, 4, 2)
	if img.Bounds() != wantImg.Bounds() {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			if uint8(r>>8) != wantImg.GrayAt(x, y).Y {
				t.Fatalf("pixel (%d,%d) = %d", x, y, r>>8)
			}
		}
	}
}

func TestDirWriteFrameReplaces(t *testing.T) {
	ctx := context.Background()
	d := NewDir(t.TempDir())
	if err := d.WriteFrame(ctx, 0, testFrame(8, 8, 0)); err != nil {
		t.Fatal(err)
	}
	if err := d.WriteFrame(ctx, 0, testFrame(2, 2, 1)); err != nil {
		t.Fatal(err)
	}
	img, err := d.Open(ctx, "frame_0000.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestDirJPEG(t *testing.T) {
	ctx := context.Background()
	d := NewDir(t.TempDir(), WithPrefix("f"), WithExtension(".JPG"), WithIndexWidth(2))

	// 8x8 blocks keep JPEG from bleeding between cells.
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Pix[y*16+x] = 0xFF
		}
	}
	if err := d.WriteFrame(ctx, 5, img); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(d.Path(), "f05.jpg")); err != nil {
		t.Fatal(err)
	}
	got, err := d.Open(ctx, "f05.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := got.At(3, 3).RGBA(); r>>8 < 200 {
		t.Fatalf("white cell decoded as %d", r>>8)
	}
	if r, _, _, _ := got.At(12, 12).RGBA(); r>>8 > 50 {
		t.Fatalf("black cell decoded as %d", r>>8)
	}
}

func TestDirNameAndPattern(t *testing.T) {
	d := NewDir("out", WithIndexWidth(3))
	name, err := d.Name(7)
	if err != nil || name != "frame_007.png" {
		t.Fatalf("Name(7) = %q, %v", name, err)
	}
	if _, err := d.Name(1000); !errors.Is(err, ErrIndexOverflow) {
		t.Fatalf("Name(1000): %v", err)
	}
	if _, err := d.Name(-1); !errors.Is(err, ErrIndexOverflow) {
		t.Fatalf("Name(-1): %v", err)
	}
	if got, want := d.Pattern(), filepath.Join("out", "frame_%03d.png"); got != want {
		t.Fatalf("Pattern() = %q, want %q", got, want)
	}
	if err := d.WriteFrame(context.Background(), 1000, testFrame(2, 2, 0)); !errors.Is(err, ErrIndexOverflow) {
		t.Fatalf("WriteFrame(1000): %v", err)
	}
}

func TestDirListInconsistentWidth(t *testing.T) {
	root := t.TempDir()
	d := NewDir(root)
	if err := d.WriteFrame(context.Background(), 0, testFrame(2, 2, 0)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "frame_12.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := d.List(context.Background()); !errors.Is(err, ErrInconsistentNames) {
		t.Fatalf("got %v, want ErrInconsistentNames", err)
	}
}

func TestDirOpenErrors(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := NewDir(root)

	if err := os.WriteFile(filepath.Join(root, "frame_0000.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Open(ctx, "frame_0000.png"); !errors.Is(err, framecodec.ErrFormat) {
		t.Fatalf("undecodable frame: %v", err)
	}
	if _, err := d.Open(ctx, "../etc/passwd"); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("foreign name: %v", err)
	}
	if _, err := d.Open(ctx, "frame_0001.png"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing frame: %v", err)
	}
	if _, err := NewDir(filepath.Join(root, "missing")).List(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing dir: %v", err)
	}
}

func TestDirClear(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d := NewDir(root)
	for i := 0; i < 2; i++ {
		if err := d.WriteFrame(ctx, i, testFrame(2, 2, i)); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(root, "keep.txt")
	if err := os.WriteFile(keep, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := d.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	ids, err := d.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("frames left after Clear: %v", ids)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Fatalf("Clear removed a non-frame file: %v", err)
	}
	if err := NewDir(filepath.Join(root, "missing")).Clear(ctx); err != nil {
		t.Fatalf("Clear on a missing dir: %v", err)
	}
}
