package framecodec

import "fmt"

// ThresholdPolicy decides how a sampled channel value maps to a bit.
// The policy is part of the format: encoder and decoder must agree.
type ThresholdPolicy uint8

const (
	// ThresholdMidpoint maps channel values above 128 to 1. It survives
	// lossy video re-encoding.
	ThresholdMidpoint ThresholdPolicy = iota
	// ThresholdExact maps only 255 to 1. Use it with lossless storage.
	ThresholdExact
)

func (p ThresholdPolicy) bit(v uint8) bool {
	if p == ThresholdExact {
		return v == 0xFF
	}
	return v > 128
}

func (p ThresholdPolicy) String() string {
	switch p {
	case ThresholdMidpoint:
		return "midpoint"
	case ThresholdExact:
		return "exact"
	default:
		return "unknown"
	}
}

// Channel selects the color channel the sampler classifies.
type Channel uint8

const (
	ChannelRed Channel = iota
	ChannelGreen
	ChannelBlue
	ChannelLuma
)

func (c Channel) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	case ChannelLuma:
		return "luma"
	default:
		return "unknown"
	}
}

// ParseThreshold parses the textual form of a ThresholdPolicy.
func ParseThreshold(s string) (ThresholdPolicy, error) {
	switch s {
	case "midpoint", "":
		return ThresholdMidpoint, nil
	case "exact":
		return ThresholdExact, nil
	}
	return 0, fmt.Errorf("%w: unknown threshold policy %q", ErrConfig, s)
}

// ParseChannel parses the textual form of a Channel.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "red", "":
		return ChannelRed, nil
	case "green":
		return ChannelGreen, nil
	case "blue":
		return ChannelBlue, nil
	case "luma":
		return ChannelLuma, nil
	}
	return 0, fmt.Errorf("%w: unknown channel %q", ErrConfig, s)
}

// Config is the raster format shared by encoder and decoder.
type Config struct {
	FrameWidth     int
	FrameHeight    int
	MacropixelSize int
	Threshold      ThresholdPolicy
	Channel        Channel
}

// DefaultConfig returns 640x480 frames with 10x10 macropixels, sampled on
// the red channel with the midpoint threshold.
func DefaultConfig() Config {
	return Config{
		FrameWidth:     640,
		FrameHeight:    480,
		MacropixelSize: 10,
		Threshold:      ThresholdMidpoint,
		Channel:        ChannelRed,
	}
}

// Validate reports ErrConfig for geometry that cannot carry bits.
func (c Config) Validate() error {
	if c.FrameWidth <= 0 || c.FrameHeight <= 0 {
		return fmt.Errorf("%w: frame size %dx%d", ErrConfig, c.FrameWidth, c.FrameHeight)
	}
	if c.MacropixelSize <= 0 {
		return fmt.Errorf("%w: macropixel size %d", ErrConfig, c.MacropixelSize)
	}
	if c.FrameWidth%c.MacropixelSize != 0 || c.FrameHeight%c.MacropixelSize != 0 {
		return fmt.Errorf("%w: macropixel size %d does not divide %dx%d",
			ErrConfig, c.MacropixelSize, c.FrameWidth, c.FrameHeight)
	}
	switch c.Threshold {
	case ThresholdMidpoint, ThresholdExact:
	default:
		return fmt.Errorf("%w: unknown threshold policy %d", ErrConfig, c.Threshold)
	}
	if c.Channel > ChannelLuma {
		return fmt.Errorf("%w: unknown channel %d", ErrConfig, c.Channel)
	}
	return nil
}

// Grid validates c and returns its macropixel grid.
func (c Config) Grid() (Grid, error) {
	if err := c.Validate(); err != nil {
		return Grid{}, err
	}
	g := Grid{
		Width:  c.FrameWidth,
		Height: c.FrameHeight,
		Size:   c.MacropixelSize,
		Cols:   c.FrameWidth / c.MacropixelSize,
		Rows:   c.FrameHeight / c.MacropixelSize,
	}
	if g.Cells() == 0 {
		return Grid{}, fmt.Errorf("%w: zero cells per frame", ErrConfig)
	}
	return g, nil
}
