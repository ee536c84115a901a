package webpframe

import (
	"encoding/binary"
	"testing"
)

func appendChunk(buf []byte, fourCC string, payload []byte) []byte {
	buf = append(buf, fourCC...)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(payload)))
	buf = append(buf, size[:]...)
	buf = append(buf, payload...)
	if len(payload)%2 != 0 {
		buf = append(buf, 0)
	}
	return buf
}

// vp8KeyframePayload builds a minimal valid VP8 keyframe header for the
// given dimensions, zero-padded to at least 10 bytes.
func vp8KeyframePayload(width, height int) []byte {
	p := make([]byte, 10)
	// frame tag: key_frame bit (bit0) = 0, version/show_frame bits unused here.
	p[0], p[1], p[2] = 0x10, 0x00, 0x00
	p[3], p[4], p[5] = 0x9d, 0x01, 0x2a
	binary.LittleEndian.PutUint16(p[6:8], uint16(width)&0x3FFF)
	binary.LittleEndian.PutUint16(p[8:10], uint16(height)&0x3FFF)
	return p
}

func buildWebP(chunks ...struct {
	fourCC  string
	payload []byte
}) []byte {
	buf := []byte("RIFF\x00\x00\x00\x00WEBP")
	for _, c := range chunks {
		buf = appendChunk(buf, c.fourCC, c.payload)
	}
	return buf
}

func TestExtractFindsVP8Chunk(t *testing.T) {
	vp8 := vp8KeyframePayload(320, 240)
	webp := buildWebP(struct {
		fourCC  string
		payload []byte
	}{"VP8 ", vp8})

	kf, err := Extract(webp)
	if err != nil {
		t.Fatal(err)
	}
	if kf.HasAlpha {
		t.Fatal("expected no alpha")
	}
	if string(kf.Data) != string(vp8) {
		t.Fatalf("got %v, want %v", kf.Data, vp8)
	}
}

func TestExtractDetectsAlpha(t *testing.T) {
	vp8 := vp8KeyframePayload(10, 10)
	webp := buildWebP(
		struct {
			fourCC  string
			payload []byte
		}{"ALPH", []byte{1, 2, 3}},
		struct {
			fourCC  string
			payload []byte
		}{"VP8 ", vp8},
	)

	kf, err := Extract(webp)
	if err != nil {
		t.Fatal(err)
	}
	if !kf.HasAlpha {
		t.Fatal("expected alpha to be detected")
	}
}

func TestExtractNoVP8Chunk(t *testing.T) {
	webp := buildWebP(struct {
		fourCC  string
		payload []byte
	}{"VP8L", []byte{1, 2, 3, 4}})

	if _, err := Extract(webp); err == nil {
		t.Fatal("expected ErrBadWebP for a VP8L-only container")
	}
}

func TestExtractTruncated(t *testing.T) {
	if _, err := Extract([]byte("RIFF")); err == nil {
		t.Fatal("expected error for input shorter than the RIFF header")
	}
}

func TestKeyframeSize(t *testing.T) {
	vp8 := vp8KeyframePayload(640, 480)
	w, h, err := KeyframeSize(vp8)
	if err != nil {
		t.Fatal(err)
	}
	if w != 640 || h != 480 {
		t.Fatalf("got %dx%d, want 640x480", w, h)
	}
}

func TestKeyframeSizeBadStartCode(t *testing.T) {
	vp8 := vp8KeyframePayload(640, 480)
	vp8[3] = 0x00
	if _, _, err := KeyframeSize(vp8); err == nil {
		t.Fatal("expected error for missing start code")
	}
}

func TestKeyframeSizeTruncated(t *testing.T) {
	if _, _, err := KeyframeSize([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for truncated header")
	}
}
