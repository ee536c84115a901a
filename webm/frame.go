package webm

// FrameInput supplies one video frame to AddFrame.
type FrameInput interface{ isFrameInput() }

// RawVP8WebP is a complete WebP byte string — the common case, where the
// host has already rendered (or otherwise obtained) the WebP bytes.
type RawVP8WebP []byte

func (RawVP8WebP) isFrameInput() {}

// Canvas is anything Encode knows how to render to WebP. The Muxer only
// needs to know enough about it to pass it through to Encode; pixel
// rasterization is entirely a host concern (spec.md §1).
type Canvas interface {
	Width() int
	Height() int
}

// CanvasFrame wraps a host canvas/image for Encode to render.
type CanvasFrame struct {
	Canvas Canvas
}

func (CanvasFrame) isFrameInput() {}

// EncodeFunc renders a Canvas to WebP bytes at the given quality — the
// "render(image, quality) -> WebP bytes" external collaborator of
// spec.md §6. The Muxer never constructs one itself; set Config.Encode.
type EncodeFunc func(c Canvas, quality float64) ([]byte, error)

// FrameOption adjusts a single AddFrame call. This replaces the source
// library's positional alpha argument, which was either a canvas or a
// duration-override number — spec.md §9's first Open Question asks for
// these to become distinct named parameters.
type FrameOption func(*frameOptions)

type frameOptions struct {
	alpha            FrameInput
	durationOverride float64 // milliseconds; 0 means "use the configured duration"
}

// WithAlpha supplies a second frame to render as the alpha channel: its
// luminance stands in for the primary frame's transparency, carried as a
// BlockGroup/BlockAdditional pair alongside the primary Block. It only
// takes effect when Config.Transparent is set; otherwise it is ignored.
func WithAlpha(alpha FrameInput) FrameOption {
	return func(o *frameOptions) { o.alpha = alpha }
}

// WithDurationOverride overrides this one frame's duration in
// milliseconds instead of the muxer's configured per-frame duration.
func WithDurationOverride(ms float64) FrameOption {
	return func(o *frameOptions) { o.durationOverride = ms }
}

type bufferedFrame struct {
	vp8            []byte
	alphaVP8       []byte
	trackNumber    uint64
	relativeTimeMs int64
	durationMs     float64
}

type cuePoint struct {
	timeMs                         float64
	trackNumber                    uint64
	clusterPositionSegmentRelative int64
}
