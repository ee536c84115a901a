// Package webmverify re-parses a muxer's output with an independent EBML
// parser (github.com/remko/go-mkvparse) and checks the structural
// invariants a hand-rolled back-patching serializer can silently violate:
// that SeekHead, Info, Tracks, at least one Cluster, and Cues all appear
// directly under Segment, and that the Duration the muxer back-patched
// is present and non-negative. It does not re-derive pixel data or block
// payloads — correctness there is the muxer's own test suite's job; this
// package only asks "does an unrelated parser agree the container is
// well-formed."
package webmverify

import (
	"bytes"
	"fmt"

	mkvparse "github.com/remko/go-mkvparse"
)

// Matroska/EBML element ids this package checks for, independent of the
// ones webm/ids.go uses internally — duplicated on purpose, since the
// point of this check is to compare against the wire format itself, not
// against the muxer's own constants.
const (
	idSegment  = 0x18538067
	idSeekHead = 0x114D9B74
	idInfo     = 0x1549A966
	idDuration = 0x4489
	idTracks   = 0x1654AE6B
	idCluster  = 0x1F43B675
	idCues     = 0x1C53BB6B
)

// Report summarizes what the independent parser observed.
type Report struct {
	HasSeekHead bool
	HasInfo     bool
	HasTracks   bool
	HasCues     bool
	ClusterCount int
	Duration     float64
	HasDuration  bool
}

// Verify parses data and returns a Report, or an error if data isn't
// parseable as Matroska/EBML at all.
func Verify(data []byte) (Report, error) {
	h := &handler{}
	if err := mkvparse.Parse(bytes.NewReader(data), h); err != nil {
		return Report{}, fmt.Errorf("webmverify: parse: %w", err)
	}
	if !h.sawSegment {
		return Report{}, fmt.Errorf("webmverify: no Segment element found")
	}
	return h.report, nil
}

// Check runs Verify and additionally enforces the invariants spec.md §8
// requires: SeekHead, Info, Tracks, and Cues directly under Segment, at
// least one Cluster, and a non-negative Duration.
func Check(data []byte) error {
	r, err := Verify(data)
	if err != nil {
		return err
	}
	switch {
	case !r.HasSeekHead:
		return fmt.Errorf("webmverify: missing SeekHead")
	case !r.HasInfo:
		return fmt.Errorf("webmverify: missing Info")
	case !r.HasTracks:
		return fmt.Errorf("webmverify: missing Tracks")
	case !r.HasCues:
		return fmt.Errorf("webmverify: missing Cues")
	case r.ClusterCount == 0:
		return fmt.Errorf("webmverify: no Cluster")
	case !r.HasDuration:
		return fmt.Errorf("webmverify: missing Duration")
	case r.Duration < 0:
		return fmt.Errorf("webmverify: negative Duration %f", r.Duration)
	}
	return nil
}

type handler struct {
	mkvparse.DefaultHandler

	sawSegment bool
	depth      []mkvparse.ElementID
	report     Report
}

func (h *handler) parent() mkvparse.ElementID {
	if len(h.depth) == 0 {
		return 0
	}
	return h.depth[len(h.depth)-1]
}

func (h *handler) HandleMasterBegin(id mkvparse.ElementID, info mkvparse.ElementInfo) (bool, error) {
	switch uint32(id) {
	case idSegment:
		h.sawSegment = true
	case idSeekHead:
		if uint32(h.parent()) == idSegment {
			h.report.HasSeekHead = true
		}
	case idInfo:
		if uint32(h.parent()) == idSegment {
			h.report.HasInfo = true
		}
	case idTracks:
		if uint32(h.parent()) == idSegment {
			h.report.HasTracks = true
		}
	case idCluster:
		if uint32(h.parent()) == idSegment {
			h.report.ClusterCount++
		}
	case idCues:
		if uint32(h.parent()) == idSegment {
			h.report.HasCues = true
		}
	}
	h.depth = append(h.depth, id)
	return true, nil
}

func (h *handler) HandleMasterEnd(id mkvparse.ElementID, info mkvparse.ElementInfo) error {
	if len(h.depth) > 0 {
		h.depth = h.depth[:len(h.depth)-1]
	}
	return nil
}

func (h *handler) HandleFloat(id mkvparse.ElementID, value float64, info mkvparse.ElementInfo) error {
	if uint32(id) == idDuration {
		h.report.Duration = value
		h.report.HasDuration = true
	}
	return nil
}
