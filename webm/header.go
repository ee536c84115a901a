package webm

import "github.com/nvllz/webmwriter/internal/ebml"

func ebmlHeaderElement() *ebml.Element {
	return &ebml.Element{
		ID:   idEBML,
		Kind: ebml.KindChildren,
		Children: []*ebml.Element{
			{ID: idEBMLVersion, Kind: ebml.KindUint, Uint: 1},
			{ID: idEBMLReadVersion, Kind: ebml.KindUint, Uint: 1},
			{ID: idEBMLMaxIDLength, Kind: ebml.KindUint, Uint: 4},
			{ID: idEBMLMaxSizeLength, Kind: ebml.KindUint, Uint: 8},
			{ID: idDocType, Kind: ebml.KindString, Str: docType},
			{ID: idDocTypeVersion, Kind: ebml.KindUint, Uint: docTypeVersion},
			{ID: idDocTypeReadVersion, Kind: ebml.KindUint, Uint: docTypeVersion},
		},
	}
}

func videoSettingsChildren(width, height int, transparent bool) []*ebml.Element {
	children := []*ebml.Element{
		{ID: idPixelWidth, Kind: ebml.KindUint, Uint: uint64(width)},
		{ID: idPixelHeight, Kind: ebml.KindUint, Uint: uint64(height)},
	}
	if transparent {
		children = append(children, &ebml.Element{ID: idAlphaMode, Kind: ebml.KindUint, Uint: 1})
	}
	return children
}

// seekPointPlaceholder reserves a {SeekID, SeekPosition} pair pointing at
// targetID. SeekPosition is forced to a 5-byte-wide uint (spec.md §4.E:
// "each position encoded as a 5-byte-wide EBML varint placeholder
// allowing 32 GB offsets"), patched with the real offset once it's known.
func seekPointPlaceholder(targetID uint32) (seek, position *ebml.Element) {
	position = &ebml.Element{ID: idSeekPos, Kind: ebml.KindUint, Uint: 0, Size: 5}
	seek = &ebml.Element{
		ID:   idSeek,
		Kind: ebml.KindChildren,
		Children: []*ebml.Element{
			{ID: idSeekID, Kind: ebml.KindBytes, Bytes: ebml.IDBytes(targetID)},
			position,
		},
	}
	return seek, position
}

// buildSegment constructs the Segment element tree — SeekHead, Info,
// Tracks — and stashes the nodes the Muxer needs offsets from later.
// Clusters and Cues are not added to this tree; flushCluster and
// writeCues serialize them straight to the sink after it.
func (m *Muxer) buildSegment() {
	seekCues, seekCuesPos := seekPointPlaceholder(idCues)
	seekInfo, seekInfoPos := seekPointPlaceholder(idInfo)
	seekTracks, seekTracksPos := seekPointPlaceholder(idTracks)

	m.seekHead = &ebml.Element{
		ID:       idSeekHead,
		Kind:     ebml.KindChildren,
		Children: []*ebml.Element{seekCues, seekInfo, seekTracks},
	}
	m.seekCuesPos, m.seekInfoPos, m.seekTracksPos = seekCuesPos, seekInfoPos, seekTracksPos

	m.segmentDuration = &ebml.Element{ID: idDuration, Kind: ebml.KindFloat64, Float64: 0}
	m.segmentInfo = &ebml.Element{
		ID:   idInfo,
		Kind: ebml.KindChildren,
		Children: []*ebml.Element{
			{ID: idTimecodeScale, Kind: ebml.KindUint, Uint: timecodeScaleNs},
			m.segmentDuration,
			{ID: idMuxingApp, Kind: ebml.KindString, Str: muxingApp},
			{ID: idWritingApp, Kind: ebml.KindString, Str: muxingApp},
		},
	}

	trackEntry := &ebml.Element{
		ID:   idTrackEntry,
		Kind: ebml.KindChildren,
		Children: []*ebml.Element{
			{ID: idTrackNumber, Kind: ebml.KindUint, Uint: trackNumberVideo},
			{ID: idTrackUID, Kind: ebml.KindUint, Uint: trackNumberVideo},
			{ID: idFlagLacing, Kind: ebml.KindUint, Uint: 0},
			{ID: idLanguage, Kind: ebml.KindString, Str: "und"},
			{ID: idCodecID, Kind: ebml.KindString, Str: "V_VP8"},
			{ID: idCodecName, Kind: ebml.KindString, Str: "VP8"},
			{ID: idTrackType, Kind: ebml.KindUint, Uint: 1},
			{ID: idVideo, Kind: ebml.KindChildren, Children: videoSettingsChildren(m.width, m.height, m.cfg.transparent)},
		},
	}
	m.tracksEl = &ebml.Element{ID: idTracks, Kind: ebml.KindChildren, Children: []*ebml.Element{trackEntry}}

	m.segment = &ebml.Element{
		ID:       idSegment,
		Kind:     ebml.KindChildren,
		Size:     ebml.SizeUnknown5Bytes,
		Children: []*ebml.Element{m.seekHead, m.segmentInfo, m.tracksEl},
	}
}

// writeHeader emits the EBML header and the Segment skeleton (SeekHead,
// Info, Tracks) as a single batch, then records the segment-relative
// offsets of Info and Tracks into their SeekHead placeholders. Cues'
// placeholder is patched later, once Cues itself is written.
func (m *Muxer) writeHeader() error {
	m.buildSegment()

	stream := ebml.NewByteStream(4096)
	if err := ebml.WriteEBML(stream, 0, ebmlHeaderElement()); err != nil {
		return err
	}
	if err := ebml.WriteEBML(stream, 0, m.segment); err != nil {
		return err
	}
	if err := m.sink.Write(stream.Bytes()); err != nil {
		return err
	}

	m.seekInfoPos.Uint = uint64(m.segmentInfo.Offset - m.segment.DataOffset)
	m.seekTracksPos.Uint = uint64(m.tracksEl.Offset - m.segment.DataOffset)

	m.log.Logf("wrote header: %dx%d transparent=%v", m.width, m.height, m.cfg.transparent)
	return nil
}
