// Command framecodec stores a file in a sequence of black and white frames,
// optionally muxed into a video with ffmpeg, and recovers it again.
//
// Usage:
//
//	framecodec encode -in FILE (-frames DIR | -archive FILE) [-video OUT]
//	framecodec decode (-frames DIR | -archive FILE | -video IN) -out FILE
//	framecodec mux -frames DIR -video OUT
//	framecodec unmux -video IN -frames DIR
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/logicossoftware/go-framecodec/internal/config"
)

const usage = `usage:
  framecodec encode -in FILE (-frames DIR | -archive FILE) [-video OUT]
  framecodec decode (-frames DIR | -archive FILE | -video IN) -out FILE
  framecodec mux -frames DIR -video OUT
  framecodec unmux -video IN -frames DIR
`

var errUsage = errors.New("invalid usage")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1], os.Args[2:])
	stop()
	if errors.Is(err, errUsage) {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "framecodec:", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs.
type app struct {
	cfg *config.Config
	log zerolog.Logger
}

func run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	logLevel := fs.String("log-level", "", "override log level (debug, info, warn, error)")
	in := fs.String("in", "", "input file")
	out := fs.String("out", "", "output file")
	frames := fs.String("frames", "", "frame directory")
	archive := fs.String("archive", "", "frame archive file")
	video := fs.String("video", "", "video file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	a := &app{cfg: cfg, log: newLogger(cfg.LogLevel)}

	start := time.Now()
	switch cmd {
	case "encode":
		err = a.encode(ctx, *in, *frames, *archive, *video)
	case "decode":
		err = a.decode(ctx, *frames, *archive, *video, *out)
	case "mux":
		err = a.mux(ctx, *frames, *video)
	case "unmux":
		err = a.unmux(ctx, *video, *frames)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	a.log.Debug().Str("cmd", cmd).Dur("took", time.Since(start)).Msg("done")
	return nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().
		Logger()
}
