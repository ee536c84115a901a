package webm

import "github.com/nvllz/webmwriter/internal/ebml"

// patchSeekHead rewrites the SeekHead's children in place now that all
// three SeekPosition placeholders hold real offsets. The id and outer
// size were already correct from the initial write, so only the
// children are re-serialized.
func (m *Muxer) patchSeekHead() error {
	savedPos := m.sink.Pos()

	stream := ebml.NewByteStream(256)
	base := m.seekHead.DataOffset
	for _, child := range m.seekHead.Children {
		if err := ebml.WriteEBML(stream, base, child); err != nil {
			return err
		}
	}

	if err := m.sink.Seek(m.seekHead.DataOffset); err != nil {
		return err
	}
	if err := m.sink.Write(stream.Bytes()); err != nil {
		return err
	}
	return m.sink.Seek(savedPos)
}

// patchDuration rewrites the Duration placeholder with the total played
// milliseconds (spec.md §4.E: cluster_start_time_ms after the final
// flush equals the sum of all frame durations).
func (m *Muxer) patchDuration() error {
	savedPos := m.sink.Pos()

	stream := ebml.NewByteStream(8)
	if err := stream.WriteFloat64BE(m.clusterStartMs); err != nil {
		return err
	}

	if err := m.sink.Seek(m.segmentDuration.DataOffset); err != nil {
		return err
	}
	if err := m.sink.Write(stream.Bytes()); err != nil {
		return err
	}
	return m.sink.Seek(savedPos)
}

// patchSegmentSize rewrites the Segment's reserved 5-byte-wide size now
// that the file's final length is known.
func (m *Muxer) patchSegmentSize() error {
	finalLen := m.sink.Len()
	size := uint64(finalLen - m.segment.DataOffset)

	stream := ebml.NewByteStream(16)
	if err := stream.WriteUnsignedIntBE(uint64(idSegment), 4); err != nil {
		return err
	}
	if err := stream.WriteEBMLVarIntWidth(size, 5); err != nil {
		return err
	}

	if err := m.sink.Seek(m.segment.Offset); err != nil {
		return err
	}
	if err := m.sink.Write(stream.Bytes()); err != nil {
		return err
	}
	return m.sink.Seek(finalLen)
}
