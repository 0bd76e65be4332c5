// Package ffmpeg muxes frame directories into video files and extracts
// them again by running the ffmpeg binary.
package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrFFmpeg wraps every failed ffmpeg run.
var ErrFFmpeg = errors.New("ffmpeg: command failed")

// stderrTail is how many stderr lines are kept for error messages.
const stderrTail = 8

// MuxOptions controls how frames are turned into a video.
type MuxOptions struct {
	FrameRate   int
	Codec       string
	PixelFormat string
	CRF         int // -1 leaves the encoder default
	ExtraArgs   []string
}

// DefaultMuxOptions matches the usual frame pipeline: 24 fps H.264 in
// yuv420p. It is lossy; pair it with macropixels and the midpoint threshold.
func DefaultMuxOptions() MuxOptions {
	return MuxOptions{
		FrameRate:   24,
		Codec:       "libx264",
		PixelFormat: "yuv420p",
		CRF:         -1,
	}
}

// FFmpeg runs an ffmpeg binary.
type FFmpeg struct {
	command func(ctx context.Context, args ...string) *exec.Cmd
	logger  zerolog.Logger
	timeout time.Duration
}

// New returns FFmpeg for bin. Output of the process is logged at debug level.
func New(bin string, logger zerolog.Logger) *FFmpeg {
	command := func(_ context.Context, args ...string) *exec.Cmd {
		return exec.Command(bin, args...)
	}
	return &FFmpeg{command: command, logger: logger, timeout: 5 * time.Second}
}

// MuxArgs returns the arguments Mux passes to ffmpeg.
func MuxArgs(pattern, out string, opts MuxOptions) []string {
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-framerate", strconv.Itoa(opts.FrameRate),
		"-start_number", "0",
		"-i", pattern,
		"-c:v", opts.Codec,
		"-pix_fmt", opts.PixelFormat,
	}
	if opts.CRF >= 0 {
		args = append(args, "-crf", strconv.Itoa(opts.CRF))
	}
	args = append(args, opts.ExtraArgs...)
	return append(args, out)
}

// DemuxArgs returns the arguments Demux passes to ffmpeg.
func DemuxArgs(in, pattern string) []string {
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", in,
		"-start_number", "0",
		pattern,
	}
}

// Mux encodes the frames matching pattern, for example
// "frames/frame_%04d.png", into the video file out.
func (f *FFmpeg) Mux(ctx context.Context, pattern, out string, opts MuxOptions) error {
	if opts.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate %d", ErrFFmpeg, opts.FrameRate)
	}
	return f.run(ctx, "mux", MuxArgs(pattern, out, opts))
}

// Demux extracts every frame of the video in to files matching pattern.
func (f *FFmpeg) Demux(ctx context.Context, in, pattern string) error {
	return f.run(ctx, "demux", DemuxArgs(in, pattern))
}

func (f *FFmpeg) run(ctx context.Context, op string, args []string) error {
	cmd := f.command(ctx, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	log := f.logger.With().Str("op", op).Logger()
	log.Debug().Strs("args", args).Msg("starting ffmpeg")
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFFmpeg, op, err)
	}

	var tail []string
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tail = scanLines(stderr, log)
	}()

	done := make(chan struct{})
	go func() {
		select {
		case <-done:
		case <-ctx.Done():
			f.stop(cmd, done)
		}
	}()

	wg.Wait()
	err = cmd.Wait()
	close(done)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v: %s", ErrFFmpeg, op, err, strings.Join(tail, "; "))
	}
	log.Debug().Dur("took", time.Since(start)).Msg("ffmpeg finished")
	return nil
}

// stop asks the process to exit and kills it if it has not after timeout.
func (f *FFmpeg) stop(cmd *exec.Cmd, done <-chan struct{}) {
	cmd.Process.Signal(os.Interrupt) //nolint:errcheck

	select {
	case <-done:
	case <-time.After(f.timeout):
		cmd.Process.Kill() //nolint:errcheck
	}
}

func scanLines(r io.Reader, log zerolog.Logger) []string {
	var tail []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug().Str("stderr", line).Msg("ffmpeg")
		tail = append(tail, line)
		if len(tail) > stderrTail {
			tail = tail[1:]
		}
	}
	return tail
}
