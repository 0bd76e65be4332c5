package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/logicossoftware/go-framecodec"
	"github.com/logicossoftware/go-framecodec/ffmpeg"
	"github.com/logicossoftware/go-framecodec/framestore"
)

func (a *app) encode(ctx context.Context, in, frames, archive, video string) error {
	if in == "" || (frames == "") == (archive == "") {
		return errUsage
	}
	if archive != "" && video != "" {
		return fmt.Errorf("%w: -video needs -frames", errUsage)
	}
	payload, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	opts, err := a.cfg.CodecOptions()
	if err != nil {
		return err
	}

	if archive != "" {
		return a.encodeArchive(ctx, payload, archive, opts)
	}

	dir := a.cfg.Dir(frames)
	if err := dir.Clear(ctx); err != nil {
		return err
	}
	n, err := framecodec.Encode(ctx, dir, payload, opts...)
	if err != nil {
		return err
	}
	a.log.Info().Str("in", in).Int("bytes", len(payload)).Int("frames", n).Str("dir", frames).Msg("encoded")

	if video == "" {
		return nil
	}
	return a.mux(ctx, frames, video)
}

func (a *app) encodeArchive(ctx context.Context, payload []byte, path string, opts []framecodec.Option) error {
	codec, err := a.cfg.Codec()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := framestore.NewArchiveWriter(f, codec.FrameWidth, codec.FrameHeight,
		framestore.WithCompression(a.cfg.Compression()))
	if err != nil {
		return err
	}
	n, err := framecodec.Encode(ctx, w, payload, opts...)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	a.log.Info().
		Int("bytes", len(payload)).
		Int("frames", n).
		Str("archive", path).
		Str("stream", w.StreamID().String()).
		Str("compression", a.cfg.Compression().String()).
		Msg("encoded")
	return nil
}

func (a *app) decode(ctx context.Context, frames, archive, video, out string) error {
	set := 0
	for _, s := range []string{frames, archive, video} {
		if s != "" {
			set++
		}
	}
	if out == "" || set != 1 {
		return errUsage
	}
	opts, err := a.cfg.CodecOptions()
	if err != nil {
		return err
	}

	var src framecodec.FrameSource
	switch {
	case archive != "":
		f, err := os.Open(archive)
		if err != nil {
			return err
		}
		defer f.Close()
		ar, err := framestore.OpenArchive(f)
		if err != nil {
			return err
		}
		a.log.Debug().Str("stream", ar.StreamID().String()).Int("frames", ar.Len()).Msg("opened archive")
		src = ar
	case video != "":
		tmp, err := os.MkdirTemp("", "framecodec-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmp)
		if err := a.unmux(ctx, video, tmp); err != nil {
			return err
		}
		src = a.cfg.Dir(tmp)
	default:
		src = a.cfg.Dir(frames)
	}

	payload, err := framecodec.Decode(ctx, src, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, payload, 0o644); err != nil {
		return err
	}
	a.log.Info().Int("bytes", len(payload)).Str("out", out).Msg("decoded")
	return nil
}

func (a *app) mux(ctx context.Context, frames, video string) error {
	if frames == "" || video == "" {
		return errUsage
	}
	ff := ffmpeg.New(a.cfg.FFmpegBin, a.log)
	if err := ff.Mux(ctx, a.cfg.Dir(frames).Pattern(), video, a.cfg.MuxOptions()); err != nil {
		return err
	}
	a.log.Info().Str("video", video).Msg("muxed")
	return nil
}

func (a *app) unmux(ctx context.Context, video, frames string) error {
	if frames == "" || video == "" {
		return errUsage
	}
	dir := a.cfg.Dir(frames)
	if err := os.MkdirAll(filepath.Clean(frames), 0o755); err != nil {
		return err
	}
	if err := dir.Clear(ctx); err != nil {
		return err
	}
	ff := ffmpeg.New(a.cfg.FFmpegBin, a.log)
	if err := ff.Demux(ctx, video, dir.Pattern()); err != nil {
		return err
	}
	a.log.Info().Str("video", video).Str("dir", frames).Msg("extracted frames")
	return nil
}
