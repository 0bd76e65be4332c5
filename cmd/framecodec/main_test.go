package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeArchive(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()
	in := filepath.Join(tmp, "in.bin")
	archive := filepath.Join(tmp, "frames.frmarc")
	out := filepath.Join(tmp, "out.bin")
	payload := bytes.Repeat([]byte{0x00, 0x7F, 0xFF, 0x42}, 1000)
	if err := os.WriteFile(in, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(ctx, "encode", []string{"-log-level", "error", "-in", in, "-archive", archive}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := run(ctx, "decode", []string{"-log-level", "error", "-archive", archive, "-out", out}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("payload mismatch")
	}
}

func TestEncodeDecodeFrames(t *testing.T) {
	ctx := context.Background()
	tmp := t.TempDir()
	in := filepath.Join(tmp, "in.txt")
	frames := filepath.Join(tmp, "frames")
	out := filepath.Join(tmp, "out.txt")
	cfg := filepath.Join(tmp, "framecodec.yaml")
	if err := os.WriteFile(in, []byte("hello frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg, []byte("frameWidth: 80\nframeHeight: 40\nmacropixelSize: 8\nlogLevel: error\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := run(ctx, "encode", []string{"-config", cfg, "-in", in, "-frames", frames}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	// 32 + 96 bits over 50 cells.
	entries, err := os.ReadDir(frames)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("wrote %d frame files", len(entries))
	}
	if err := run(ctx, "decode", []string{"-config", cfg, "-frames", frames, "-out", out}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello frames" {
		t.Fatalf("decoded %q", got)
	}
}

func TestUsageErrors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		cmd  string
		args []string
	}{
		{"bogus", nil},
		{"encode", []string{"-frames", "x"}},
		{"encode", []string{"-in", "a", "-frames", "x", "-archive", "y"}},
		{"encode", []string{"-in", "a", "-archive", "y", "-video", "v.mp4"}},
		{"decode", []string{"-frames", "x"}},
		{"decode", []string{"-frames", "x", "-archive", "y", "-out", "o"}},
		{"mux", []string{"-frames", "x"}},
		{"unmux", []string{"-video", "v.mp4"}},
		{"encode", []string{"-no-such-flag"}},
	}
	for _, tt := range tests {
		if err := run(ctx, tt.cmd, append([]string{"-log-level", "error"}, tt.args...)); !errors.Is(err, errUsage) {
			t.Fatalf("%s %v: got %v, want errUsage", tt.cmd, tt.args, err)
		}
	}
}
