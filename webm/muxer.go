// Package webm assembles a sequence of VP8 keyframe WebP images —
// optionally with a separate alpha channel — into a playable WebM
// (Matroska) file, writing incrementally so very large videos can be
// streamed to a file without holding the encoded bytes in memory.
package webm

import (
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/nvllz/webmwriter/internal/diag"
	"github.com/nvllz/webmwriter/internal/ebml"
	"github.com/nvllz/webmwriter/internal/webpframe"
)

type muxerState int

const (
	stateInitial muxerState = iota
	stateWriting
	stateCompleted
)

// Blob is the materialized output of Complete in memory mode.
type Blob struct {
	ID       string
	MimeType string
	Data     []byte
}

// job is one unit of work submitted to the muxer's single worker, the Go
// stand-in for the source library's serialized promise chain (spec.md
// §5: "an idiomatic re-implementation may use a single-worker mailbox").
type job func()

// Muxer drives the WebM state machine described in spec.md §4.E. All of
// its write-side work runs on a single internal goroutine so that calls
// issued in order become visible to the sink in that same order, which
// Complete's back-patches depend on. Muxer is not safe for concurrent
// calls to AddFrame/Complete from multiple goroutines — callers must
// serialize their own calls, the way a single-threaded event loop would.
type Muxer struct {
	cfg  resolvedConfig
	log  *diag.Logger
	sink ebml.Sink

	chain     chan job
	wg        sync.WaitGroup
	completed atomic.Bool

	state  muxerState
	width  int
	height int

	clusterStartMs float64
	clusterDurMs   float64
	clusterFrames  []bufferedFrame
	cues           []cuePoint

	segment         *ebml.Element
	seekHead        *ebml.Element
	seekCuesPos     *ebml.Element
	seekInfoPos     *ebml.Element
	seekTracksPos   *ebml.Element
	segmentInfo     *ebml.Element
	segmentDuration *ebml.Element
	tracksEl        *ebml.Element
}

// New creates a Muxer. It fails only on configuration errors; no I/O
// happens until the first AddFrame or Complete call.
func New(cfg Config) (*Muxer, error) {
	resolved, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	var sink ebml.Sink
	if resolved.file != nil {
		sink = ebml.NewFileSink(resolved.file)
	} else {
		sink = ebml.NewMemorySink()
	}

	m := &Muxer{
		cfg:   resolved,
		log:   diag.New(os.Stderr, resolved.verbose),
		sink:  sink,
		chain: make(chan job, 16),
	}
	m.wg.Add(1)
	go m.run()
	return m, nil
}

func (m *Muxer) run() {
	defer m.wg.Done()
	for j := range m.chain {
		j()
	}
}

func (m *Muxer) submit(fn func() error) error {
	done := make(chan error, 1)
	m.chain <- job(func() { done <- fn() })
	return <-done
}

func (m *Muxer) submitBlob(fn func() (*ebml.Blob, error)) (*ebml.Blob, error) {
	type result struct {
		blob *ebml.Blob
		err  error
	}
	done := make(chan result, 1)
	m.chain <- job(func() {
		b, err := fn()
		done <- result{b, err}
	})
	r := <-done
	return r.blob, r.err
}

// AddFrame enqueues one video frame on the serialized write chain and
// waits for it: rendering and VP8 extraction of the primary frame (and of
// the alpha frame, if WithAlpha is given), buffering, and any cluster
// flush all run on the chain's worker, and AddFrame returns that work's
// error.
func (m *Muxer) AddFrame(input FrameInput, opts ...FrameOption) error {
	if m.completed.Load() {
		return ErrCompleted
	}

	// NaN marks "no override given", so an explicit override of 0 can be
	// told apart from it and rejected.
	fo := frameOptions{durationOverride: math.NaN()}
	for _, opt := range opts {
		opt(&fo)
	}
	if fo.durationOverride == 0 {
		return ErrBadFrameDuration
	}
	if math.IsNaN(fo.durationOverride) {
		fo.durationOverride = 0
	}

	return m.submit(func() error {
		if m.state == stateCompleted {
			return ErrCompleted
		}
		return m.addFrame(input, fo)
	})
}

func (m *Muxer) render(input FrameInput, quality float64) ([]byte, error) {
	switch v := input.(type) {
	case RawVP8WebP:
		return []byte(v), nil
	case CanvasFrame:
		if m.cfg.encode == nil {
			return nil, fmt.Errorf("webm: CanvasFrame supplied but Config.Encode is nil")
		}
		return m.cfg.encode(v.Canvas, quality)
	default:
		return nil, fmt.Errorf("webm: unsupported frame input type %T", input)
	}
}

func (m *Muxer) addFrame(input FrameInput, fo frameOptions) error {
	vp8, err := m.render(input, m.cfg.quality)
	if err != nil {
		return err
	}
	keyframe, err := webpframe.Extract(vp8)
	if err != nil {
		return err
	}

	var alphaData []byte
	if fo.alpha != nil && m.cfg.transparent {
		alphaBytes, err := m.render(fo.alpha, m.cfg.alphaQuality)
		if err != nil {
			return err
		}
		alphaKeyframe, err := webpframe.Extract(alphaBytes)
		if err != nil {
			return err
		}
		alphaData = alphaKeyframe.Data
	}

	durationMs := fo.durationOverride
	if durationMs == 0 {
		durationMs = m.cfg.frameDurationMs
	}
	if durationMs <= 0 {
		return ErrBadFrameDuration
	}

	if m.state == stateInitial {
		width, height, err := webpframe.KeyframeSize(keyframe.Data)
		if err != nil {
			return err
		}
		m.width, m.height = width, height
		if err := m.writeHeader(); err != nil {
			return err
		}
		m.state = stateWriting
	}

	m.clusterFrames = append(m.clusterFrames, bufferedFrame{
		vp8:            keyframe.Data,
		alphaVP8:       alphaData,
		trackNumber:    trackNumberVideo,
		relativeTimeMs: int64(math.Round(m.clusterDurMs)),
		durationMs:     durationMs,
	})
	m.clusterDurMs += durationMs

	m.log.LogfThrottled("add-frame", 0, "buffered frame at cluster-relative %dms", m.clusterFrames[len(m.clusterFrames)-1].relativeTimeMs)

	if m.clusterDurMs >= maxClusterDurationMs {
		return m.flushCluster()
	}
	return nil
}

// Complete flushes any partial cluster, emits Cues, rewrites the
// SeekHead/Duration/Segment-size placeholders, and materializes the sink.
// It is the only way to produce a valid file; once it returns
// successfully the Muxer is done and every further call fails with
// ErrCompleted.
func (m *Muxer) Complete() (*Blob, error) {
	if m.completed.Load() {
		return nil, ErrCompleted
	}

	raw, err := m.submitBlob(m.complete)
	close(m.chain)
	m.wg.Wait()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return &Blob{ID: raw.ID, MimeType: raw.MimeType, Data: raw.Data}, nil
}

func (m *Muxer) complete() (*ebml.Blob, error) {
	if m.state == stateCompleted {
		return nil, ErrCompleted
	}

	if m.state == stateInitial {
		// Zero frames: still produce a valid file. There is no frame to
		// derive dimensions from, so the TrackEntry's width/height fall
		// back to their zero value — spec.md §8.6 only requires DocType "webm" at
		// the expected offset and a size floor, not real dimensions.
		if err := m.writeHeader(); err != nil {
			return nil, err
		}
	}

	if err := m.flushCluster(); err != nil {
		return nil, err
	}
	if err := m.writeCues(); err != nil {
		return nil, err
	}
	if err := m.patchSeekHead(); err != nil {
		return nil, err
	}
	if err := m.patchDuration(); err != nil {
		return nil, err
	}
	if err := m.patchSegmentSize(); err != nil {
		return nil, err
	}

	m.state = stateCompleted
	m.completed.Store(true)

	m.log.Logf("complete: %d bytes, %d clusters, %.0fms", m.sink.Len(), len(m.cues), m.clusterStartMs)

	return m.sink.Complete("video/webm")
}

// WrittenSize returns the total number of bytes ever addressed by the
// sink (equal to its length).
func (m *Muxer) WrittenSize() int64 {
	if m.completed.Load() {
		return m.sink.Len()
	}
	var n int64
	_ = m.submit(func() error { n = m.sink.Len(); return nil })
	return n
}
