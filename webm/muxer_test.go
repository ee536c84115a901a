package webm

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"
)

// buildWebPKeyframe assembles a minimal single-chunk WebP container
// carrying a VP8 keyframe with the given dimensions.
func buildWebPKeyframe(t *testing.T, width, height int) []byte {
	t.Helper()
	vp8 := make([]byte, 10)
	vp8[0], vp8[1], vp8[2] = 0x10, 0x00, 0x00 // keyframe bit clear
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

func TestNewRequiresFrameTiming(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected ErrMissingFrameTiming")
	}
	if _, err := New(Config{FrameDurationMs: 33, FrameRate: 30}); err == nil {
		t.Fatal("expected ErrMissingFrameTiming when both are set")
	}
}

// TestEmptyVideo is scenario S5.
func TestEmptyVideo(t *testing.T) {
	m, err := New(Config{FrameRate: 30})
	if err != nil {
		t.Fatal(err)
	}
	blob, err := m.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if blob == nil || len(blob.Data) < 12 {
		t.Fatalf("expected blob of at least 12 bytes, got %v", blob)
	}
	if !bytes.Contains(blob.Data, []byte("webm")) {
		t.Fatal("expected DocType \"webm\" to appear in the header")
	}

	if _, err := m.Complete(); err != ErrCompleted {
		t.Fatalf("expected ErrCompleted on second Complete, got %v", err)
	}
}

// TestSingleKeyframe is scenario S6.
func TestSingleKeyframe(t *testing.T) {
	m, err := New(Config{FrameDurationMs: 33})
	if err != nil {
		t.Fatal(err)
	}
	webp := buildWebPKeyframe(t, 64, 48)
	if err := m.AddFrame(RawVP8WebP(webp)); err != nil {
		t.Fatal(err)
	}
	blob, err := m.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(blob.Data, []byte{0x80}) {
		t.Fatal("expected a SimpleBlock keyframe flags byte (0x80) somewhere in the output")
	}
}

func TestBadWebPFrame(t *testing.T) {
	m, err := New(Config{FrameDurationMs: 33})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.AddFrame(RawVP8WebP([]byte("not a webp"))); err == nil {
		t.Fatal("expected ErrBadWebP")
	}
}

func TestZeroDurationFrameRejected(t *testing.T) {
	m, err := New(Config{FrameDurationMs: 33})
	if err != nil {
		t.Fatal(err)
	}
	webp := buildWebPKeyframe(t, 16, 16)
	err = m.AddFrame(RawVP8WebP(webp), WithDurationOverride(0))
	if err != ErrBadFrameDuration {
		t.Fatalf("got %v, want ErrBadFrameDuration", err)
	}
}

func TestWrittenSizeGrows(t *testing.T) {
	m, err := New(Config{FrameDurationMs: 33})
	if err != nil {
		t.Fatal(err)
	}
	before := m.WrittenSize()
	webp := buildWebPKeyframe(t, 16, 16)
	if err := m.AddFrame(RawVP8WebP(webp)); err != nil {
		t.Fatal(err)
	}
	if after := m.WrittenSize(); after <= before {
		t.Fatalf("expected WrittenSize to grow: before=%d after=%d", before, after)
	}
}

func TestManyFramesForceClusterFlush(t *testing.T) {
	m, err := New(Config{FrameDurationMs: 200})
	if err != nil {
		t.Fatal(err)
	}
	webp := buildWebPKeyframe(t, 8, 8)
	// 200ms * 30 frames = 6000ms, crossing the 5000ms cluster boundary
	// at least once.
	for i := 0; i < 30; i++ {
		if err := m.AddFrame(RawVP8WebP(webp)); err != nil {
			t.Fatal(err)
		}
	}
	blob, err := m.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if len(blob.Data) == 0 {
		t.Fatal("expected non-empty output")
	}
}

func TestAlphaFrameUsesBlockGroup(t *testing.T) {
	m, err := New(Config{FrameDurationMs: 33, Transparent: true})
	if err != nil {
		t.Fatal(err)
	}
	primary := buildWebPKeyframe(t, 32, 32)
	alpha := buildWebPKeyframe(t, 32, 32)
	if err := m.AddFrame(RawVP8WebP(primary), WithAlpha(RawVP8WebP(alpha))); err != nil {
		t.Fatal(err)
	}
	blob, err := m.Complete()
	if err != nil {
		t.Fatal(err)
	}

	// idBlockGroup (0xA0, 1 byte), idBlockAdditions (0x75A1, 2 bytes), and
	// idAlphaMode (0x53C0, 2 bytes) are the element ids this path must
	// emit; their byte-string literal names never appear in the binary
	// stream, so the check has to look for the ids themselves.
	if !bytes.Contains(blob.Data, []byte{idBlockGroup}) {
		t.Fatal("expected a BlockGroup (0xA0) element for the alpha-carrying frame")
	}
	if !bytes.Contains(blob.Data, []byte{0x75, 0xA1}) {
		t.Fatal("expected a BlockAdditions (0x75A1) element for the alpha-carrying frame")
	}
	if !bytes.Contains(blob.Data, []byte{0x53, 0xC0}) {
		t.Fatal("expected an AlphaMode (0x53C0) element in the track header")
	}
	// A single id byte also occurs inside longer ids (0xA3 ends the EBML
	// header id 1A45DFA3), so the SimpleBlock check only looks at the
	// bytes from the Cluster id up to the Cues that follow it.
	clusterAt := bytes.Index(blob.Data, []byte{0x1F, 0x43, 0xB6, 0x75})
	if clusterAt < 0 {
		t.Fatal("expected a Cluster (0x1F43B675) element")
	}
	cluster := blob.Data[clusterAt:]
	if cuesAt := bytes.Index(cluster, []byte{0x1C, 0x53, 0xBB, 0x6B}); cuesAt >= 0 {
		cluster = cluster[:cuesAt]
	}
	if bytes.Contains(cluster, []byte{idSimpleBlock}) {
		t.Fatal("expected no SimpleBlock when a BlockGroup carries the frame")
	}
}

func TestFileSinkMode(t *testing.T) {
	f := t.TempDir() + "/out.webm"
	file, err := os.Create(f)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()

	m, err := New(Config{FrameDurationMs: 33, File: file})
	if err != nil {
		t.Fatal(err)
	}
	webp := buildWebPKeyframe(t, 16, 16)
	if err := m.AddFrame(RawVP8WebP(webp)); err != nil {
		t.Fatal(err)
	}
	blob, err := m.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if blob != nil {
		t.Fatal("expected nil blob in file mode")
	}
}
