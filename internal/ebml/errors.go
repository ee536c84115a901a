package ebml

import "errors"

// Sentinel errors for the byte-stream, sink, and tree-serializer layers.
// webm/errors.go re-exports these so callers of the public package can
// errors.Is against them without importing this internal package.
var (
	ErrOverwriteCrossesBlobBoundaries = errors.New("ebml: overwrite crosses blob chunk boundaries")
	ErrSeekBeyondEnd                  = errors.New("ebml: seek beyond sink end")
	ErrNegativeOffset                 = errors.New("ebml: negative seek offset")
	// ErrNaNOffset exists for parity with the source library's float-typed
	// offsets. Offsets in this port are int64, so a NaN seek is not
	// reachable through the Sink interface; it is kept exported in case a
	// caller builds an offset from a float computation before seeking.
	ErrNaNOffset            = errors.New("ebml: NaN seek offset")
	ErrMeasureUnknownLength = errors.New("ebml: value exceeds the supported unsigned-int width")
	ErrBadEBMLDatatype      = errors.New("ebml: unsupported element payload type")
)
