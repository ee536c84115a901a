package webm

import "os"

const (
	defaultQuality       = 0.95
	maxQuality           = 0.99999
	maxClusterDurationMs = 5000
)

// Config configures a new Muxer. Exactly one of FrameDurationMs or
// FrameRate must be set; New fails with ErrMissingFrameTiming otherwise.
type Config struct {
	// Quality is clamped to [0, 0.99999] and passed to Encode for the
	// primary frame. Zero is treated as "use the default" (0.95); to mux
	// at the floor of the range, pass a very small positive value instead.
	Quality float64
	// AlphaQuality defaults to Quality when zero.
	AlphaQuality float64
	// Transparent emits AlphaMode=1 in the track header and, for frames
	// that carry a WithAlpha option, a BlockGroup/BlockAdditional pair
	// instead of a bare SimpleBlock.
	Transparent bool

	// FrameDurationMs is the duration of every frame that doesn't specify
	// WithDurationOverride.
	FrameDurationMs float64
	// FrameRate is an alternative to FrameDurationMs: frame duration
	// becomes 1000/FrameRate.
	FrameRate float64

	// File streams directly to this file via a file-backed Sink instead
	// of buffering in memory. Nil means memory mode; Complete then
	// returns a materialized Blob.
	File *os.File

	// Encode renders a Canvas to WebP bytes — the host-provided
	// render(image, quality) collaborator spec.md places out of scope.
	// Only required if AddFrame is ever called with a CanvasFrame.
	Encode EncodeFunc

	// Verbose enables the muxer's throttled diagnostic logging to stderr.
	Verbose bool
}

func clampQuality(q float64) float64 {
	if q < 0 {
		return 0
	}
	if q > maxQuality {
		return maxQuality
	}
	return q
}

type resolvedConfig struct {
	quality         float64
	alphaQuality    float64
	transparent     bool
	frameDurationMs float64
	file            *os.File
	encode          EncodeFunc
	verbose         bool
}

func (c Config) resolve() (resolvedConfig, error) {
	quality := defaultQuality
	if c.Quality != 0 {
		quality = c.Quality
	}
	quality = clampQuality(quality)

	alphaQuality := quality
	if c.AlphaQuality != 0 {
		alphaQuality = clampQuality(c.AlphaQuality)
	}

	var durationMs float64
	switch {
	case c.FrameDurationMs > 0 && c.FrameRate > 0:
		return resolvedConfig{}, ErrMissingFrameTiming
	case c.FrameDurationMs > 0:
		durationMs = c.FrameDurationMs
	case c.FrameRate > 0:
		durationMs = 1000 / c.FrameRate
	default:
		return resolvedConfig{}, ErrMissingFrameTiming
	}

	return resolvedConfig{
		quality:         quality,
		alphaQuality:    alphaQuality,
		transparent:     c.Transparent,
		frameDurationMs: durationMs,
		file:            c.File,
		encode:          c.Encode,
		verbose:         c.Verbose,
	}, nil
}
