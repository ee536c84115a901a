package webmverify

import (
	"encoding/binary"
	"testing"

	"github.com/nvllz/webmwriter/webm"
)

func buildWebPKeyframe(width, height int) []byte {
	vp8 := make([]byte, 10)
	vp8[0], vp8[1], vp8[2] = 0x10, 0x00, 0x00
	vp8[3], vp8[4], vp8[5] = 0x9d, 0x01, 0x2a
	binary.LittleEndian.PutUint16(vp8[6:8], uint16(width)&0x3FFF)
	binary.LittleEndian.PutUint16(vp8[8:10], uint16(height)&0x3FFF)

	buf := []byte("RIFF\x00\x00\x00\x00WEBP")
	buf = append(buf, "VP8 "...)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(vp8)))
	buf = append(buf, size[:]...)
	buf = append(buf, vp8...)
	return buf
}

func muxOneFrame(t *testing.T) []byte {
	t.Helper()
	m, err := webm.New(webm.Config{FrameDurationMs: 33})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddFrame(webm.RawVP8WebP(buildWebPKeyframe(32, 24))); err != nil {
		t.Fatal(err)
	}
	blob, err := m.Complete()
	if err != nil {
		t.Fatal(err)
	}
	return blob.Data
}

func TestCheckAcceptsMuxerOutput(t *testing.T) {
	if err := Check(muxOneFrame(t)); err != nil {
		t.Fatalf("Check rejected well-formed muxer output: %v", err)
	}
}

func TestVerifyReportsClusterAndDuration(t *testing.T) {
	r, err := Verify(muxOneFrame(t))
	if err != nil {
		t.Fatal(err)
	}
	if !r.HasSeekHead || !r.HasInfo || !r.HasTracks || !r.HasCues {
		t.Fatalf("incomplete report: %+v", r)
	}
	if r.ClusterCount != 1 {
		t.Fatalf("got %d clusters, want 1", r.ClusterCount)
	}
	if !r.HasDuration || r.Duration != 33 {
		t.Fatalf("got duration %v (has=%v), want 33", r.Duration, r.HasDuration)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := Verify([]byte("not ebml at all")); err == nil {
		t.Fatal("expected an error parsing non-EBML data")
	}
}
