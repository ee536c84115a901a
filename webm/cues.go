package webm

import (
	"math"

	"github.com/nvllz/webmwriter/internal/ebml"
)

// writeCues serializes the accumulated CuePoints as a Cues element and
// records its segment-relative offset into the Cues SeekHead placeholder.
// A no-op if no cluster was ever flushed.
func (m *Muxer) writeCues() error {
	if len(m.cues) == 0 {
		return nil
	}

	cuePoints := make([]*ebml.Element, 0, len(m.cues))
	for _, c := range m.cues {
		cuePoints = append(cuePoints, &ebml.Element{
			ID:   idCuePoint,
			Kind: ebml.KindChildren,
			Children: []*ebml.Element{
				{ID: idCueTime, Kind: ebml.KindUint, Uint: uint64(math.Round(c.timeMs))},
				{
					ID:   idCueTrackPositions,
					Kind: ebml.KindChildren,
					Children: []*ebml.Element{
						{ID: idCueTrack, Kind: ebml.KindUint, Uint: c.trackNumber},
						{ID: idCueClusterPosition, Kind: ebml.KindUint, Uint: uint64(c.clusterPositionSegmentRelative)},
					},
				},
			},
		})
	}
	cues := &ebml.Element{ID: idCues, Kind: ebml.KindChildren, Children: cuePoints}

	stream := ebml.NewByteStream(len(m.cues)*48 + 32)
	base := m.sink.Pos()
	if err := ebml.WriteEBML(stream, base, cues); err != nil {
		return err
	}
	if err := m.sink.Write(stream.Bytes()); err != nil {
		return err
	}

	m.seekCuesPos.Uint = uint64(cues.Offset - m.segment.DataOffset)
	return nil
}
