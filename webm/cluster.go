package webm

import (
	"fmt"
	"math"

	"github.com/nvllz/webmwriter/internal/ebml"
)

func trackNumberByte(n uint64) (byte, error) {
	if n < 1 || n > 126 {
		return 0, fmt.Errorf("%w: %d", ErrBadTrackNumber, n)
	}
	return byte(0x80 | n), nil
}

func blockPayload(f bufferedFrame, flags byte) ([]byte, error) {
	trackByte, err := trackNumberByte(f.trackNumber)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, 4+len(f.vp8))
	payload = append(payload, trackByte)
	payload = append(payload, byte(f.relativeTimeMs>>8), byte(f.relativeTimeMs))
	payload = append(payload, flags)
	payload = append(payload, f.vp8...)
	return payload, nil
}

func simpleBlockElement(f bufferedFrame) (*ebml.Element, error) {
	payload, err := blockPayload(f, 0x80) // keyframe bit set
	if err != nil {
		return nil, err
	}
	return &ebml.Element{ID: idSimpleBlock, Kind: ebml.KindBytes, Bytes: payload}, nil
}

func blockGroupElement(f bufferedFrame) (*ebml.Element, error) {
	payload, err := blockPayload(f, 0x00)
	if err != nil {
		return nil, err
	}
	return &ebml.Element{
		ID:   idBlockGroup,
		Kind: ebml.KindChildren,
		Children: []*ebml.Element{
			{ID: idBlock, Kind: ebml.KindBytes, Bytes: payload},
			{
				ID:   idBlockAdditions,
				Kind: ebml.KindChildren,
				Children: []*ebml.Element{
					{
						ID:   idBlockMore,
						Kind: ebml.KindChildren,
						Children: []*ebml.Element{
							{ID: idBlockAddID, Kind: ebml.KindUint, Uint: 1},
							{ID: idBlockAdditional, Kind: ebml.KindBytes, Bytes: f.alphaVP8},
						},
					},
				},
			},
		},
	}, nil
}

func blockElements(frames []bufferedFrame) ([]*ebml.Element, error) {
	out := make([]*ebml.Element, 0, len(frames))
	for _, f := range frames {
		var el *ebml.Element
		var err error
		if f.alphaVP8 != nil {
			el, err = blockGroupElement(f)
		} else {
			el, err = simpleBlockElement(f)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	return out, nil
}

// flushCluster serializes the buffered frames as a Cluster element,
// records a CuePoint for it, and resets the cluster accumulator. A no-op
// if the buffer is empty.
func (m *Muxer) flushCluster() error {
	if len(m.clusterFrames) == 0 {
		return nil
	}

	blocks, err := blockElements(m.clusterFrames)
	if err != nil {
		return err
	}

	estimatedSize := 32
	for _, f := range m.clusterFrames {
		estimatedSize += len(f.vp8) + len(f.alphaVP8) + 64
	}

	cluster := &ebml.Element{
		ID:   idCluster,
		Kind: ebml.KindChildren,
		Children: append([]*ebml.Element{
			{ID: idTimecode, Kind: ebml.KindUint, Uint: uint64(math.Round(m.clusterStartMs))},
		}, blocks...),
	}

	stream := ebml.NewByteStream(estimatedSize)
	base := m.sink.Pos()
	if err := ebml.WriteEBML(stream, base, cluster); err != nil {
		return err
	}
	if err := m.sink.Write(stream.Bytes()); err != nil {
		return err
	}

	m.cues = append(m.cues, cuePoint{
		timeMs:                         m.clusterStartMs,
		trackNumber:                    trackNumberVideo,
		clusterPositionSegmentRelative: cluster.Offset - m.segment.DataOffset,
	})

	m.log.LogfThrottled("cluster-flush", 0, "flushed cluster at %.0fms with %d frames", m.clusterStartMs, len(m.clusterFrames))

	m.clusterStartMs += m.clusterDurMs
	m.clusterDurMs = 0
	m.clusterFrames = nil
	return nil
}
