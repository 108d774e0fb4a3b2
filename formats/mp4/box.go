// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"encoding/binary"
	"iter"
)

// FourCC is a four character code packed big-endian into 32 bits.
type FourCC uint32

const (
	TypeFtyp FourCC = 'f'<<24 | 't'<<16 | 'y'<<8 | 'p'
	TypeMoov FourCC = 'm'<<24 | 'o'<<16 | 'o'<<8 | 'v'
	TypeMdat FourCC = 'm'<<24 | 'd'<<16 | 'a'<<8 | 't'
	TypeTrak FourCC = 't'<<24 | 'r'<<16 | 'a'<<8 | 'k'
	TypeMdia FourCC = 'm'<<24 | 'd'<<16 | 'i'<<8 | 'a'
	TypeMdhd FourCC = 'm'<<24 | 'd'<<16 | 'h'<<8 | 'd'
	TypeHdlr FourCC = 'h'<<24 | 'd'<<16 | 'l'<<8 | 'r'
	TypeMinf FourCC = 'm'<<24 | 'i'<<16 | 'n'<<8 | 'f'
	TypeStbl FourCC = 's'<<24 | 't'<<16 | 'b'<<8 | 'l'
	TypeStsd FourCC = 's'<<24 | 't'<<16 | 's'<<8 | 'd'
	TypeStsz FourCC = 's'<<24 | 't'<<16 | 's'<<8 | 'z'
	TypeStco FourCC = 's'<<24 | 't'<<16 | 'c'<<8 | 'o'
	TypeCo64 FourCC = 'c'<<24 | 'o'<<16 | '6'<<8 | '4'
	TypeEsds FourCC = 'e'<<24 | 's'<<16 | 'd'<<8 | 's'

	HandlerSound FourCC = 's'<<24 | 'o'<<16 | 'u'<<8 | 'n'
	CodecMP4A    FourCC = 'm'<<24 | 'p'<<16 | '4'<<8 | 'a'
)

// ParseFourCC packs the first four bytes of s.
func ParseFourCC(s string) FourCC {
	var b [4]byte
	copy(b[:], s)
	return FourCC(binary.BigEndian.Uint32(b[:]))
}

func (c FourCC) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return string(b[:])
}

// Box is a parsed box header. Size covers header and payload.
type Box struct {
	Size       uint64
	Type       FourCC
	HeaderSize int
}

// ParseBoxHeader reads the box header at the start of b. b must extend at
// least to the end of the box.
func ParseBoxHeader(b []byte) (Box, error) {
	if len(b) < 8 {
		return Box{}, ErrShortHeader
	}

	box := Box{
		Size:       uint64(binary.BigEndian.Uint32(b)),
		Type:       FourCC(binary.BigEndian.Uint32(b[4:])),
		HeaderSize: 8,
	}

	switch box.Size {
	case 0:
		return Box{}, ErrZeroSizeBox
	case 1:
		if len(b) < 16 {
			return Box{}, ErrShortHeader
		}
		box.Size = binary.BigEndian.Uint64(b[8:])
		box.HeaderSize = 16
	}

	if box.Size < uint64(box.HeaderSize) || box.Size > uint64(len(b)) {
		return Box{}, ErrBadBoxSize
	}

	return box, nil
}

// AppendHeader encodes the header, using the 64-bit form when the box was
// parsed from one or its size does not fit 32 bits.
func (b Box) AppendHeader(dst []byte) []byte {
	if b.HeaderSize == 16 || b.Size > 0xFFFFFFFF {
		dst = binary.BigEndian.AppendUint32(dst, 1)
		dst = binary.BigEndian.AppendUint32(dst, uint32(b.Type))
		return binary.BigEndian.AppendUint64(dst, b.Size)
	}
	dst = binary.BigEndian.AppendUint32(dst, uint32(b.Size))
	return binary.BigEndian.AppendUint32(dst, uint32(b.Type))
}

// Span locates a box inside a buffer.
type Span struct {
	Box
	Offset int
}

// Bytes returns the whole box, header included.
func (s Span) Bytes(b []byte) []byte {
	return b[s.Offset : s.Offset+int(s.Size)]
}

// Payload returns the box content after the header.
func (s Span) Payload(b []byte) []byte {
	return b[s.Offset+s.HeaderSize : s.Offset+int(s.Size)]
}

// Boxes walks sibling boxes packed in b. The walk stops at the first
// malformed header or when fewer than 8 bytes remain.
func Boxes(b []byte) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		off := 0
		for len(b)-off >= 8 {
			box, err := ParseBoxHeader(b[off:])
			if err != nil {
				return
			}
			if !yield(Span{Box: box, Offset: off}) {
				return
			}
			off += int(box.Size)
		}
	}
}

// FindBox returns the first sibling box of type t in b.
func FindBox(b []byte, t FourCC) (Span, bool) {
	for s := range Boxes(b) {
		if s.Type == t {
			return s, true
		}
	}
	return Span{}, false
}

// findPath descends through nested boxes and returns the payload of the
// last one.
func findPath(b []byte, path ...FourCC) ([]byte, bool) {
	for _, t := range path {
		s, ok := FindBox(b, t)
		if !ok {
			return nil, false
		}
		b = s.Payload(b)
	}
	return b, true
}

// payloadOf checks the box type at the start of b and returns its payload.
func payloadOf(b []byte, t FourCC) ([]byte, error) {
	box, err := ParseBoxHeader(b)
	if err != nil {
		return nil, err
	}
	if box.Type != t {
		return nil, ErrUnexpectedBox
	}
	return b[box.HeaderSize:box.Size], nil
}
