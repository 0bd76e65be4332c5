package framecodec

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.Threshold != ThresholdMidpoint || c.Channel != ChannelRed {
		t.Fatalf("defaults = %+v", c)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero width", func(c *Config) { c.FrameWidth = 0 }},
		{"negative height", func(c *Config) { c.FrameHeight = -1 }},
		{"zero macropixel", func(c *Config) { c.MacropixelSize = 0 }},
		{"width not divisible", func(c *Config) { c.FrameWidth = 645 }},
		{"height not divisible", func(c *Config) { c.FrameHeight = 475 }},
		{"threshold", func(c *Config) { c.Threshold = ThresholdPolicy(2) }},
		{"channel", func(c *Config) { c.Channel = Channel(4) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.edit(&c)
			if err := c.Validate(); !errors.Is(err, ErrConfig) {
				t.Fatalf("Validate: %v", err)
			}
			if _, err := c.Grid(); !errors.Is(err, ErrConfig) {
				t.Fatalf("Grid: %v", err)
			}
		})
	}
}

func TestMacropixelEqualToFrame(t *testing.T) {
	g, err := Config{FrameWidth: 16, FrameHeight: 16, MacropixelSize: 16}.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if g.Cells() != 1 {
		t.Fatalf("Cells() = %d", g.Cells())
	}
}

func TestParseThresholdAndChannel(t *testing.T) {
	for _, p := range []ThresholdPolicy{ThresholdMidpoint, ThresholdExact} {
		got, err := ParseThreshold(p.String())
		if err != nil || got != p {
			t.Fatalf("ParseThreshold(%q) = %v, %v", p.String(), got, err)
		}
	}
	if _, err := ParseThreshold("fuzzy"); !errors.Is(err, ErrConfig) {
		t.Fatalf("ParseThreshold: %v", err)
	}

	for _, c := range []Channel{ChannelRed, ChannelGreen, ChannelBlue, ChannelLuma} {
		got, err := ParseChannel(c.String())
		if err != nil || got != c {
			t.Fatalf("ParseChannel(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseChannel("alpha"); !errors.Is(err, ErrConfig) {
		t.Fatalf("ParseChannel: %v", err)
	}
	if got, _ := ParseChannel(""); got != ChannelRed {
		t.Fatalf("empty channel = %v", got)
	}
}

func TestOptionsDefaults(t *testing.T) {
	cfg := newCodecConfig([]Option{WithConcurrency(-3), WithLimits(Limits{MaxFrames: 7})})
	if cfg.concurrency != 1 {
		t.Fatalf("concurrency = %d", cfg.concurrency)
	}
	if cfg.limits.MaxFrames != 7 || cfg.limits.MaxPayloadLen != defaultLimits().MaxPayloadLen {
		t.Fatalf("limits = %+v", cfg.limits)
	}
	if cfg.format != DefaultConfig() {
		t.Fatalf("format = %+v", cfg.format)
	}

	c := Config{FrameWidth: 4, FrameHeight: 2, MacropixelSize: 2, Threshold: ThresholdExact, Channel: ChannelBlue}
	if got := newCodecConfig([]Option{WithConfig(c)}).format; got != c {
		t.Fatalf("WithConfig = %+v", got)
	}
}
