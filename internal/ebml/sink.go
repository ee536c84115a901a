package ebml

import (
	"fmt"
	"os"
	"sort"

	"github.com/google/uuid"
)

// Blob is the materialized result of Sink.Complete in memory mode: a
// single opaque byte-bearing value, tagged the way the source library
// tags its in-memory Blob handle.
type Blob struct {
	ID       string
	MimeType string
	Data     []byte
}

// Sink is a seekable append-or-overwrite byte destination. Writes land at
// the current cursor and advance it; Seek repositions the cursor into
// already-written territory so a caller can patch previously-reserved
// placeholders.
type Sink interface {
	Write(p []byte) error
	Seek(offset int64) error
	Pos() int64
	Len() int64
	// Complete finalizes the sink. In memory mode it returns a Blob; in
	// file mode it returns (nil, nil) — the source library's null
	// sentinel, since the bytes already live in the caller's file.
	Complete(mimeType string) (*Blob, error)
}

type blobChunk struct {
	offset int64
	data   []byte
}

// MemorySink is the in-memory Sink mode: an ordered, non-overlapping list
// of chunks that supports overwriting a previously-written region as
// long as the new write is fully contained in one existing chunk.
type MemorySink struct {
	chunks []blobChunk
	pos    int64
	length int64
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Pos() int64 { return s.pos }
func (s *MemorySink) Len() int64 { return s.length }

func (s *MemorySink) Seek(offset int64) error {
	if offset < 0 {
		return ErrNegativeOffset
	}
	if offset > s.length {
		return ErrSeekBeyondEnd
	}
	s.pos = offset
	return nil
}

// Write appends at, or overwrites within, the current cursor position.
func (s *MemorySink) Write(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	data := make([]byte, len(p))
	copy(data, p)

	offset := s.pos
	end := offset + int64(len(data))

	if offset < s.length {
		if err := s.overwrite(offset, data); err != nil {
			return err
		}
	} else {
		s.chunks = append(s.chunks, blobChunk{offset: offset, data: data})
	}

	s.pos = end
	if end > s.length {
		s.length = end
	}
	return nil
}

// overwrite splices data into whichever existing chunk fully contains
// [offset, offset+len(data)). A write that only partially overlaps a
// chunk, or that falls in a gap between chunks, violates the containment
// invariant and fails.
func (s *MemorySink) overwrite(offset int64, data []byte) error {
	end := offset + int64(len(data))
	for i := range s.chunks {
		c := &s.chunks[i]
		cEnd := c.offset + int64(len(c.data))
		if end <= c.offset || offset >= cEnd {
			continue
		}
		if offset < c.offset || end > cEnd {
			return ErrOverwriteCrossesBlobBoundaries
		}
		if offset == c.offset && len(data) == len(c.data) {
			c.data = data
			return nil
		}
		rel := offset - c.offset
		spliced := make([]byte, len(c.data))
		copy(spliced, c.data)
		copy(spliced[rel:], data)
		c.data = spliced
		return nil
	}
	return ErrOverwriteCrossesBlobBoundaries
}

// Complete concatenates the chunks in offset order into a single Blob.
func (s *MemorySink) Complete(mimeType string) (*Blob, error) {
	sort.Slice(s.chunks, func(i, j int) bool { return s.chunks[i].offset < s.chunks[j].offset })
	buf := make([]byte, s.length)
	for _, c := range s.chunks {
		copy(buf[c.offset:], c.data)
	}
	return &Blob{ID: uuid.NewString(), MimeType: mimeType, Data: buf}, nil
}

// FileSink is the file-backed Sink mode: writes are positional writes
// against an *os.File, so no chunk bookkeeping or containment check is
// needed — the filesystem already allows arbitrary overwrites.
type FileSink struct {
	f      *os.File
	pos    int64
	length int64
}

// NewFileSink wraps f. The caller owns f and is responsible for closing it.
func NewFileSink(f *os.File) *FileSink {
	return &FileSink{f: f}
}

func (s *FileSink) Pos() int64 { return s.pos }
func (s *FileSink) Len() int64 { return s.length }

func (s *FileSink) Seek(offset int64) error {
	if offset < 0 {
		return ErrNegativeOffset
	}
	if offset > s.length {
		return ErrSeekBeyondEnd
	}
	s.pos = offset
	return nil
}

// Write performs a positional write at the current cursor, looping until
// every byte is emitted — the one internal retry spec.md's error policy
// allows.
func (s *FileSink) Write(p []byte) error {
	remaining := p
	offset := s.pos
	for len(remaining) > 0 {
		n, err := s.f.WriteAt(remaining, offset)
		if err != nil {
			return fmt.Errorf("ebml: file sink write at %d: %w", offset, err)
		}
		remaining = remaining[n:]
		offset += int64(n)
	}
	s.pos += int64(len(p))
	if s.pos > s.length {
		s.length = s.pos
	}
	return nil
}

// Complete is a no-op in file mode: the bytes already live in the
// caller's file, so there is nothing to materialize.
func (s *FileSink) Complete(mimeType string) (*Blob, error) {
	return nil, nil
}
