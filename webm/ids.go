package webm

// Matroska/EBML element ids, per spec.md §6.
const (
	idEBML               = 0x1A45DFA3
	idEBMLVersion         = 0x4286
	idEBMLReadVersion     = 0x42F7
	idEBMLMaxIDLength     = 0x42F2
	idEBMLMaxSizeLength   = 0x42F3
	idDocType             = 0x4282
	idDocTypeVersion      = 0x4287
	idDocTypeReadVersion  = 0x4285

	idSegment  = 0x18538067
	idSeekHead = 0x114D9B74
	idSeek     = 0x4DBB
	idSeekID   = 0x53AB
	idSeekPos  = 0x53AC

	idInfo          = 0x1549A966
	idTimecodeScale = 0x2AD7B1
	idDuration      = 0x4489
	idMuxingApp     = 0x4D80
	idWritingApp    = 0x5741

	idTracks      = 0x1654AE6B
	idTrackEntry  = 0xAE
	idTrackNumber = 0xD7
	idTrackUID    = 0x73C5
	idFlagLacing  = 0x9C
	idLanguage    = 0x22B59C
	idCodecID     = 0x86
	idCodecName   = 0x258688
	idTrackType   = 0x83
	idVideo       = 0xE0
	idPixelWidth  = 0xB0
	idPixelHeight = 0xBA
	idAlphaMode   = 0x53C0

	idCluster         = 0x1F43B675
	idTimecode        = 0xE7
	idSimpleBlock     = 0xA3
	idBlockGroup      = 0xA0
	idBlock           = 0xA1
	idBlockAdditions  = 0x75A1
	idBlockMore       = 0xA6
	idBlockAddID      = 0xEE
	idBlockAdditional = 0xA5

	idCues               = 0x1C53BB6B
	idCuePoint           = 0xBB
	idCueTime            = 0xB3
	idCueTrackPositions  = 0xB7
	idCueTrack           = 0xF7
	idCueClusterPosition = 0xF1
)

const (
	trackNumberVideo = 1
	docType          = "webm"
	docTypeVersion   = 2
	muxingApp        = "webm-writer-js"
	timecodeScaleNs  = 1_000_000 // 1ms per tick
)
