// Package config loads the settings of the framecodec command from a YAML
// file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/logicossoftware/go-framecodec"
	"github.com/logicossoftware/go-framecodec/ffmpeg"
	"github.com/logicossoftware/go-framecodec/framestore"
)

// Config holds everything the command needs besides its input and output
// paths.
type Config struct {
	// Raster format. Encoder and decoder must agree on all of these.
	FrameWidth     int    `yaml:"frameWidth"`
	FrameHeight    int    `yaml:"frameHeight"`
	MacropixelSize int    `yaml:"macropixelSize"`
	Threshold      string `yaml:"threshold"`
	Channel        string `yaml:"channel"`
	Concurrency    int    `yaml:"concurrency"`

	// Frame directory naming.
	FramePrefix     string `yaml:"framePrefix"`
	FrameExtension  string `yaml:"frameExtension"`
	FrameIndexWidth int    `yaml:"frameIndexWidth"`

	// Archive store.
	ArchiveCompression string `yaml:"archiveCompression"`

	// Video tool.
	FFmpegBin   string `yaml:"ffmpegBin"`
	FrameRate   int    `yaml:"frameRate"`
	VideoCodec  string `yaml:"videoCodec"`
	PixelFormat string `yaml:"pixelFormat"`
	CRF         int    `yaml:"crf"`

	LogLevel string `yaml:"logLevel"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	codec := framecodec.DefaultConfig()
	mux := ffmpeg.DefaultMuxOptions()
	return &Config{
		FrameWidth:         codec.FrameWidth,
		FrameHeight:        codec.FrameHeight,
		MacropixelSize:     codec.MacropixelSize,
		Threshold:          codec.Threshold.String(),
		Channel:            codec.Channel.String(),
		Concurrency:        1,
		FramePrefix:        "frame_",
		FrameExtension:     ".png",
		FrameIndexWidth:    4,
		ArchiveCompression: framestore.CompZSTD.String(),
		FFmpegBin:          "ffmpeg",
		FrameRate:          mux.FrameRate,
		VideoCodec:         mux.Codec,
		PixelFormat:        mux.PixelFormat,
		CRF:                mux.CRF,
		LogLevel:           "info",
	}
}

// Load reads path, if not empty, over the defaults, then applies
// environment overrides and validates the result.
//
// Environment variables:
//   - FRAMECODEC_FRAME_WIDTH, FRAMECODEC_FRAME_HEIGHT: frame size in pixels
//   - FRAMECODEC_MACROPIXEL_SIZE: macropixel side in pixels
//   - FRAMECODEC_THRESHOLD: midpoint or exact
//   - FRAMECODEC_CHANNEL: red, green, blue or luma
//   - FRAMECODEC_CONCURRENCY: frames processed at once
//   - FRAMECODEC_ARCHIVE_COMPRESSION: none, zip, zstd, lz4 or br
//   - FRAMECODEC_FFMPEG_BIN: ffmpeg binary
//   - FRAMECODEC_FRAME_RATE: video frame rate
//   - FRAMECODEC_LOG_LEVEL: debug, info, warn or error
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"FRAMECODEC_FRAME_WIDTH", &c.FrameWidth},
		{"FRAMECODEC_FRAME_HEIGHT", &c.FrameHeight},
		{"FRAMECODEC_MACROPIXEL_SIZE", &c.MacropixelSize},
		{"FRAMECODEC_CONCURRENCY", &c.Concurrency},
		{"FRAMECODEC_FRAME_RATE", &c.FrameRate},
	}
	for _, v := range ints {
		val := os.Getenv(v.key)
		if val == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("%s must be a valid integer", v.key)
		}
		*v.dst = n
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"FRAMECODEC_THRESHOLD", &c.Threshold},
		{"FRAMECODEC_CHANNEL", &c.Channel},
		{"FRAMECODEC_ARCHIVE_COMPRESSION", &c.ArchiveCompression},
		{"FRAMECODEC_FFMPEG_BIN", &c.FFmpegBin},
		{"FRAMECODEC_LOG_LEVEL", &c.LogLevel},
	}
	for _, v := range strs {
		if val := os.Getenv(v.key); val != "" {
			*v.dst = strings.TrimSpace(val)
		}
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if _, err := c.Codec(); err != nil {
		return err
	}
	if c.Concurrency < 1 {
		return errors.New("concurrency must be a positive integer")
	}
	if c.FrameIndexWidth < 1 || c.FrameIndexWidth > 10 {
		return errors.New("frameIndexWidth must be between 1 and 10")
	}
	switch strings.ToLower(c.FrameExtension) {
	case ".png", ".jpg", ".jpeg":
	default:
		return fmt.Errorf("frameExtension %q is not supported", c.FrameExtension)
	}
	if _, err := framestore.ParseCompression(c.ArchiveCompression); err != nil {
		return err
	}
	if c.FFmpegBin == "" {
		return errors.New("ffmpegBin cannot be empty")
	}
	if c.FrameRate <= 0 || c.FrameRate > 240 {
		return errors.New("frameRate must be between 1 and 240")
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("logLevel must be 'debug', 'info', 'warn', or 'error'")
	}
	return nil
}

// Codec returns the raster format.
func (c *Config) Codec() (framecodec.Config, error) {
	threshold, err := framecodec.ParseThreshold(c.Threshold)
	if err != nil {
		return framecodec.Config{}, err
	}
	channel, err := framecodec.ParseChannel(c.Channel)
	if err != nil {
		return framecodec.Config{}, err
	}
	codec := framecodec.Config{
		FrameWidth:     c.FrameWidth,
		FrameHeight:    c.FrameHeight,
		MacropixelSize: c.MacropixelSize,
		Threshold:      threshold,
		Channel:        channel,
	}
	return codec, codec.Validate()
}

// CodecOptions returns the options for framecodec.Encode and Decode.
func (c *Config) CodecOptions() ([]framecodec.Option, error) {
	codec, err := c.Codec()
	if err != nil {
		return nil, err
	}
	return []framecodec.Option{
		framecodec.WithConfig(codec),
		framecodec.WithConcurrency(c.Concurrency),
	}, nil
}

// Dir returns the frame directory store for path.
func (c *Config) Dir(path string) *framestore.Dir {
	return framestore.NewDir(path,
		framestore.WithPrefix(c.FramePrefix),
		framestore.WithExtension(c.FrameExtension),
		framestore.WithIndexWidth(c.FrameIndexWidth),
	)
}

// Compression returns the archive compression. Validate has checked it.
func (c *Config) Compression() framestore.Compression {
	comp, _ := framestore.ParseCompression(c.ArchiveCompression)
	return comp
}

// MuxOptions returns the ffmpeg options for building a video.
func (c *Config) MuxOptions() ffmpeg.MuxOptions {
	return ffmpeg.MuxOptions{
		FrameRate:   c.FrameRate,
		Codec:       c.VideoCodec,
		PixelFormat: c.PixelFormat,
		CRF:         c.CRF,
	}
}
