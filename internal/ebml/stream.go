// Package ebml implements the low-level byte-stream, blob-sink, and
// declarative tree serializer that back the public webm package: a fixed
// capacity scratch buffer (ByteStream), a seekable append-or-overwrite
// destination (Sink), and a tree walker that formats Element values into
// that buffer with deferred back-patching of size fields (WriteEBML).
package ebml

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ByteStream is a fixed-capacity scratch buffer with a cursor. It formats
// one batch of sibling elements at a time before the caller hands the
// result to a Sink; it is never grown mid-batch, so callers must size it
// generously for what they intend to write.
type ByteStream struct {
	buf []byte
	pos int
}

// NewByteStream allocates a ByteStream with the given capacity.
func NewByteStream(capacity int) *ByteStream {
	return &ByteStream{buf: make([]byte, capacity)}
}

// Pos returns the current cursor position.
func (s *ByteStream) Pos() int { return s.pos }

// Cap returns the buffer's fixed capacity.
func (s *ByteStream) Cap() int { return len(s.buf) }

// Bytes returns the bytes written so far, [0, pos).
func (s *ByteStream) Bytes() []byte { return s.buf[:s.pos] }

// Seek moves the cursor. p must not exceed the buffer's capacity.
func (s *ByteStream) Seek(p int) error {
	if p < 0 || p > len(s.buf) {
		return fmt.Errorf("ebml: byte stream seek %d out of range [0,%d]", p, len(s.buf))
	}
	s.pos = p
	return nil
}

func (s *ByteStream) grow(n int) ([]byte, error) {
	if s.pos+n > len(s.buf) {
		return nil, fmt.Errorf("ebml: byte stream capacity exceeded: pos=%d need=%d cap=%d", s.pos, n, len(s.buf))
	}
	b := s.buf[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// WriteByte appends a single byte.
func (s *ByteStream) WriteByte(b byte) error {
	buf, err := s.grow(1)
	if err != nil {
		return err
	}
	buf[0] = b
	return nil
}

// WriteBytes appends bs verbatim.
func (s *ByteStream) WriteBytes(bs []byte) error {
	buf, err := s.grow(len(bs))
	if err != nil {
		return err
	}
	copy(buf, bs)
	return nil
}

// WriteString appends the UTF-8 bytes of str, with no size prefix.
func (s *ByteStream) WriteString(str string) error {
	return s.WriteBytes([]byte(str))
}

// WriteFloat32BE appends f as a big-endian IEEE-754 single.
func (s *ByteStream) WriteFloat32BE(f float32) error {
	buf, err := s.grow(4)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint32(buf, math.Float32bits(f))
	return nil
}

// WriteFloat64BE appends f as a big-endian IEEE-754 double.
func (s *ByteStream) WriteFloat64BE(f float64) error {
	buf, err := s.grow(8)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint64(buf, math.Float64bits(f))
	return nil
}

// MeasureUnsignedInt returns the minimum number of big-endian bytes (1-5)
// needed to represent n. Values that would need a 6th byte are rejected
// rather than silently truncated, per the reimplementation note in
// spec.md §9 about measure_unsigned_int's 5-byte cap.
func MeasureUnsignedInt(n uint64) (int, error) {
	switch {
	case n < 1<<8:
		return 1, nil
	case n < 1<<16:
		return 2, nil
	case n < 1<<24:
		return 3, nil
	case n < 1<<32:
		return 4, nil
	case n < 1<<40:
		return 5, nil
	default:
		return 0, fmt.Errorf("%w: %d needs more than 5 bytes", ErrMeasureUnknownLength, n)
	}
}

// WriteUnsignedIntBE writes n big-endian in exactly width bytes.
func (s *ByteStream) WriteUnsignedIntBE(n uint64, width int) error {
	buf, err := s.grow(width)
	if err != nil {
		return err
	}
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	return nil
}

// ebmlVarIntWidth returns the smallest w in [1,8] such that n < 2^(7w)-1,
// reserving the all-ones encoding for the unknown-size sentinel.
func ebmlVarIntWidth(n uint64) (int, error) {
	for w := 1; w <= 8; w++ {
		if n < (uint64(1)<<(7*w))-1 {
			return w, nil
		}
	}
	return 0, fmt.Errorf("ebml: %d does not fit an 8-byte EBML varint", n)
}

// WriteEBMLVarInt writes n using the smallest EBML variable-width
// encoding that can hold it.
func (s *ByteStream) WriteEBMLVarInt(n uint64) error {
	w, err := ebmlVarIntWidth(n)
	if err != nil {
		return err
	}
	return s.WriteEBMLVarIntWidth(n, w)
}

// WriteEBMLVarIntWidth writes n using exactly w bytes, forcing the width.
// Used to patch a previously-reserved placeholder whose width was already
// committed to the stream layout.
func (s *ByteStream) WriteEBMLVarIntWidth(n uint64, w int) error {
	if w < 1 || w > 8 {
		return fmt.Errorf("ebml: invalid EBML varint width %d", w)
	}
	max := (uint64(1) << (7 * w)) - 1
	if n > max-1 {
		return fmt.Errorf("ebml: %d does not fit a %d-byte EBML varint", n, w)
	}
	marker := uint64(1) << (7 * w)
	return s.WriteUnsignedIntBE(marker|n, w)
}
