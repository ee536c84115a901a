package ebml

import "fmt"

// Size sentinels for Element.Size when Kind is KindChildren. SizeAuto (the
// zero value) means "measure the children and back-patch a 4-byte
// placeholder"; the other two mirror the reserved EBML encodings for
// streaming / deferred-patch sizes.
const (
	SizeAuto          int64 = 0
	SizeUnknown       int64 = -1
	SizeUnknown5Bytes int64 = -2
)

// Kind selects how an Element's payload fields are interpreted.
type Kind int

const (
	KindChildren Kind = iota
	KindString
	KindBytes
	KindUint
	KindFloat32
	KindFloat64
)

// Element is one node of a declarative EBML tree. Kind determines which
// of Children/Str/Bytes/Uint/Float32/Float64 holds the payload.
type Element struct {
	ID   uint32
	Kind Kind

	Children []*Element
	Str      string
	Bytes    []byte
	Uint     uint64
	Float32  float32
	Float64  float64

	// Size overrides how the payload is framed. For KindChildren it
	// selects SizeAuto/SizeUnknown/SizeUnknown5Bytes (any other value is
	// ignored — children size is always measured and patched). For
	// KindUint, a positive Size forces the big-endian integer width
	// instead of the narrowest width MeasureUnsignedInt would pick; this
	// is how SeekPosition's 5-byte placeholder is reserved ahead of the
	// offset it will later hold.
	Size int64

	// Offset and DataOffset are populated by WriteEBML: the absolute file
	// offset of this element's id byte, and of its payload's first byte.
	Offset     int64
	DataOffset int64
}

func (*Element) isNode() {}

// Node is anything WriteEBML can serialize: a sibling list, a raw byte
// array written verbatim, a string written with no size prefix (used to
// embed an already-framed payload), or a tagged Element.
type Node interface{ isNode() }

// Siblings is an ordered list of Nodes, each written in turn.
type Siblings []Node

func (Siblings) isNode() {}

// Raw is written verbatim, with no size prefix.
type Raw []byte

func (Raw) isNode() {}

// Verbatim is written as UTF-8 bytes, with no size prefix.
type Verbatim string

func (Verbatim) isNode() {}

// WriteEBML formats node into stream. streamFileOffset is the absolute
// file position that byte 0 of stream corresponds to; it lets elements
// record absolute offsets even though stream itself always starts at a
// local position 0.
func WriteEBML(stream *ByteStream, streamFileOffset int64, node Node) error {
	switch n := node.(type) {
	case Siblings:
		for _, child := range n {
			if err := WriteEBML(stream, streamFileOffset, child); err != nil {
				return err
			}
		}
		return nil
	case Raw:
		return stream.WriteBytes(n)
	case Verbatim:
		return stream.WriteString(string(n))
	case *Element:
		return writeElement(stream, streamFileOffset, n)
	default:
		return fmt.Errorf("%w: unsupported node type %T", ErrBadEBMLDatatype, node)
	}
}

func idByteWidth(id uint32) int {
	switch {
	case id <= 0xFF:
		return 1
	case id <= 0xFFFF:
		return 2
	case id <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}

// IDBytes returns id's minimal big-endian byte representation — the same
// framing WriteEBML uses for an element's own id, reused for the SeekID
// payload that names a *target* element's id as raw bytes.
func IDBytes(id uint32) []byte {
	w := idByteWidth(id)
	b := make([]byte, w)
	for i := w - 1; i >= 0; i-- {
		b[i] = byte(id)
		id >>= 8
	}
	return b
}

func writeElement(s *ByteStream, base int64, el *Element) error {
	el.Offset = base + int64(s.Pos())
	if err := s.WriteUnsignedIntBE(uint64(el.ID), idByteWidth(el.ID)); err != nil {
		return err
	}

	switch el.Kind {
	case KindChildren:
		return writeChildren(s, base, el)
	case KindString:
		if err := s.WriteEBMLVarInt(uint64(len(el.Str))); err != nil {
			return err
		}
		el.DataOffset = base + int64(s.Pos())
		return s.WriteString(el.Str)
	case KindBytes:
		if err := s.WriteEBMLVarInt(uint64(len(el.Bytes))); err != nil {
			return err
		}
		el.DataOffset = base + int64(s.Pos())
		return s.WriteBytes(el.Bytes)
	case KindUint:
		width := int(el.Size)
		if width <= 0 {
			w, err := MeasureUnsignedInt(el.Uint)
			if err != nil {
				return err
			}
			width = w
		}
		if err := s.WriteEBMLVarInt(uint64(width)); err != nil {
			return err
		}
		el.DataOffset = base + int64(s.Pos())
		return s.WriteUnsignedIntBE(el.Uint, width)
	case KindFloat64:
		if err := s.WriteEBMLVarInt(8); err != nil {
			return err
		}
		el.DataOffset = base + int64(s.Pos())
		return s.WriteFloat64BE(el.Float64)
	case KindFloat32:
		if err := s.WriteEBMLVarInt(4); err != nil {
			return err
		}
		el.DataOffset = base + int64(s.Pos())
		return s.WriteFloat32BE(el.Float32)
	default:
		return fmt.Errorf("%w: element kind %v", ErrBadEBMLDatatype, el.Kind)
	}
}

var unknown5ByteVarInt = []byte{0x0F, 0xFF, 0xFF, 0xFF, 0xFF}

func writeChildren(s *ByteStream, base int64, el *Element) error {
	switch el.Size {
	case SizeUnknown:
		if err := s.WriteByte(0xFF); err != nil {
			return err
		}
		el.DataOffset = base + int64(s.Pos())
		return writeSiblings(s, base, el.Children)
	case SizeUnknown5Bytes:
		if err := s.WriteBytes(unknown5ByteVarInt); err != nil {
			return err
		}
		el.DataOffset = base + int64(s.Pos())
		return writeSiblings(s, base, el.Children)
	default:
		sizePos := s.Pos()
		if err := s.WriteBytes([]byte{0, 0, 0, 0}); err != nil {
			return err
		}
		dataBegin := s.Pos()
		el.DataOffset = base + int64(dataBegin)
		if err := writeSiblings(s, base, el.Children); err != nil {
			return err
		}
		size := uint64(s.Pos() - dataBegin)
		endPos := s.Pos()
		if err := s.Seek(sizePos); err != nil {
			return err
		}
		if err := s.WriteEBMLVarIntWidth(size, 4); err != nil {
			return err
		}
		return s.Seek(endPos)
	}
}

func writeSiblings(s *ByteStream, base int64, children []*Element) error {
	for _, c := range children {
		if err := WriteEBML(s, base, c); err != nil {
			return err
		}
	}
	return nil
}
