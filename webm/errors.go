package webm

import (
	"errors"

	"github.com/nvllz/webmwriter/internal/ebml"
	"github.com/nvllz/webmwriter/internal/webpframe"
)

var (
	ErrMissingFrameTiming = errors.New("webm: exactly one of FrameDurationMs or FrameRate must be set")
	ErrBadTrackNumber     = errors.New("webm: track number outside [1,126]")
	ErrBadFrameDuration   = errors.New("webm: frame duration must be greater than zero")
	ErrCompleted          = errors.New("webm: muxer already completed")

	// ErrBadWebP and the sink/tree errors below are re-exported from the
	// internal packages they originate in, so callers can errors.Is
	// against a single set of sentinels without importing internal code.
	ErrBadWebP                        = webpframe.ErrBadWebP
	ErrOverwriteCrossesBlobBoundaries = ebml.ErrOverwriteCrossesBlobBoundaries
	ErrSeekBeyondEnd                  = ebml.ErrSeekBeyondEnd
	ErrNegativeOffset                 = ebml.ErrNegativeOffset
	ErrNaNOffset                      = ebml.ErrNaNOffset
	ErrMeasureUnknownLength           = ebml.ErrMeasureUnknownLength
	ErrBadEBMLDatatype                = ebml.ErrBadEBMLDatatype
)
