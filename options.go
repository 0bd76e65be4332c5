package framecodec

type codecConfig struct {
	format      Config
	limits      Limits
	concurrency int
}

func newCodecConfig(opts []Option) codecConfig {
	cfg := codecConfig{
		format:      DefaultConfig(),
		limits:      defaultLimits(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}
	return cfg
}

// Option configures Encode and Decode.
type Option func(*codecConfig)

// WithConfig replaces the whole raster format.
func WithConfig(c Config) Option {
	return func(cfg *codecConfig) { cfg.format = c }
}

func WithFrameSize(width, height int) Option {
	return func(cfg *codecConfig) {
		cfg.format.FrameWidth = width
		cfg.format.FrameHeight = height
	}
}

func WithMacropixelSize(size int) Option {
	return func(cfg *codecConfig) { cfg.format.MacropixelSize = size }
}

func WithThreshold(p ThresholdPolicy) Option {
	return func(cfg *codecConfig) { cfg.format.Threshold = p }
}

func WithChannel(c Channel) Option {
	return func(cfg *codecConfig) { cfg.format.Channel = c }
}

// WithLimits sets decode limits. Zero fields keep their defaults.
func WithLimits(l Limits) Option {
	return func(cfg *codecConfig) { cfg.limits = l }
}

// WithConcurrency sets how many frames may be rasterized or sampled at
// once. Frames are still delivered in index order.
func WithConcurrency(n int) Option {
	return func(cfg *codecConfig) { cfg.concurrency = n }
}
