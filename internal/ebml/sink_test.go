package ebml

import "testing"

func TestMemorySinkAppendMonotonicity(t *testing.T) {
	s := NewMemorySink()
	writes := []string{"abc", "defg", "hi"}
	var total int64
	for _, w := range writes {
		if err := s.Write([]byte(w)); err != nil {
			t.Fatal(err)
		}
		total += int64(len(w))
	}
	if s.Pos() != total || s.Len() != total {
		t.Fatalf("pos=%d len=%d, want %d", s.Pos(), s.Len(), total)
	}
}

// TestMemorySinkOverwriteWithinChunk is scenario S3 from spec.md §8.
func TestMemorySinkOverwriteWithinChunk(t *testing.T) {
	s := NewMemorySink()
	for _, w := range []string{"Hello, ", "world", "?!", "?!"} {
		if err := s.Write([]byte(w)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Seek(2); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]byte("-man")); err != nil {
		t.Fatal(err)
	}

	blob, err := s.Complete("")
	if err != nil {
		t.Fatal(err)
	}
	want := "He-man world?!?!"
	if string(blob.Data) != want {
		t.Fatalf("got %q, want %q", blob.Data, want)
	}
}

// TestMemorySinkAppendAfterOverwrite continues S3 into S4.
func TestMemorySinkAppendAfterOverwrite(t *testing.T) {
	s := NewMemorySink()
	for _, w := range []string{"Hello, ", "world", "?!", "?!"} {
		if err := s.Write([]byte(w)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Seek(2); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]byte("-man")); err != nil {
		t.Fatal(err)
	}
	if err := s.Seek(s.Len()); err != nil {
		t.Fatal(err)
	}
	if err := s.Write([]byte(" Hi.")); err != nil {
		t.Fatal(err)
	}

	blob, err := s.Complete("")
	if err != nil {
		t.Fatal(err)
	}
	want := "He-man world?!?! Hi."
	if string(blob.Data) != want {
		t.Fatalf("got %q, want %q", blob.Data, want)
	}
	if len(blob.Data) != 20 {
		t.Fatalf("len=%d, want 20", len(blob.Data))
	}
}

func TestMemorySinkOverwriteCrossesBoundary(t *testing.T) {
	s := NewMemorySink()
	_ = s.Write([]byte("abc"))
	_ = s.Write([]byte("def"))
	if err := s.Seek(2); err != nil {
		t.Fatal(err)
	}
	err := s.Write([]byte("XXXX")) // spans from inside chunk 1 into chunk 2
	if err == nil {
		t.Fatal("expected containment violation")
	}
}

func TestMemorySinkSeekBeyondEnd(t *testing.T) {
	s := NewMemorySink()
	_ = s.Write([]byte("abc"))
	if err := s.Seek(10); err == nil {
		t.Fatal("expected seek-beyond-end error")
	}
	if err := s.Seek(-1); err == nil {
		t.Fatal("expected negative-offset error")
	}
}
