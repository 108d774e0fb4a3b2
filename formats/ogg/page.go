// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ik5/audpcm/audio"
)

const (
	headerSize = 27
	// MaxPageSize is the largest possible page: header, 255 lacing
	// values and 255 full segments.
	MaxPageSize = headerSize + 255 + 255*255

	FlagContinued = 0x01
	FlagFirst     = 0x02
	FlagLast      = 0x04
)

var capturePattern = []byte("OggS")

var (
	ErrCapturePattern = fmt.Errorf("%w: missing OggS capture pattern", audio.ErrDecodeFailed)
	ErrVersion        = fmt.Errorf("%w: unsupported ogg version", audio.ErrDecodeFailed)
	ErrChecksum       = fmt.Errorf("%w: page checksum mismatch", audio.ErrDecodeFailed)
)

// Page is one parsed Ogg page. Body aliases the parsed buffer.
type Page struct {
	Flags    byte
	Granule  int64
	Serial   uint32
	Sequence uint32
	Lacing   []byte
	Body     []byte
	// Size is the encoded length of the page.
	Size int
}

func (p Page) Continued() bool { return p.Flags&FlagContinued != 0 }
func (p Page) First() bool     { return p.Flags&FlagFirst != 0 }
func (p Page) Last() bool      { return p.Flags&FlagLast != 0 }

// ParsePage reads the page at the start of b. It returns
// audio.ErrNeedMoreData when b holds only part of a page.
func ParsePage(b []byte) (Page, error) {
	if len(b) < 4 {
		if bytes.HasPrefix(capturePattern, b) {
			return Page{}, audio.ErrNeedMoreData
		}
		return Page{}, ErrCapturePattern
	}
	if !bytes.Equal(b[:4], capturePattern) {
		return Page{}, ErrCapturePattern
	}
	if len(b) < headerSize {
		return Page{}, audio.ErrNeedMoreData
	}
	if b[4] != 0 {
		return Page{}, ErrVersion
	}

	segments := int(b[26])
	if len(b) < headerSize+segments {
		return Page{}, audio.ErrNeedMoreData
	}
	lacing := b[headerSize : headerSize+segments]

	bodyLen := 0
	for _, l := range lacing {
		bodyLen += int(l)
	}
	size := headerSize + segments + bodyLen
	if len(b) < size {
		return Page{}, audio.ErrNeedMoreData
	}

	if want := binary.LittleEndian.Uint32(b[22:]); checksum(b[:size]) != want {
		return Page{}, ErrChecksum
	}

	return Page{
		Flags:    b[5],
		Granule:  int64(binary.LittleEndian.Uint64(b[6:])),
		Serial:   binary.LittleEndian.Uint32(b[14:]),
		Sequence: binary.LittleEndian.Uint32(b[18:]),
		Lacing:   lacing,
		Body:     b[headerSize+segments : size],
		Size:     size,
	}, nil
}

// AppendPage encodes a page carrying the given packets. Each packet is
// laced completely onto this page.
func AppendPage(dst []byte, flags byte, granule int64, serial, sequence uint32, packets ...[]byte) []byte {
	var lacing []byte
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			lacing = append(lacing, 255)
			n -= 255
		}
		lacing = append(lacing, byte(n))
	}

	start := len(dst)
	dst = append(dst, capturePattern...)
	dst = append(dst, 0, flags)
	dst = binary.LittleEndian.AppendUint64(dst, uint64(granule))
	dst = binary.LittleEndian.AppendUint32(dst, serial)
	dst = binary.LittleEndian.AppendUint32(dst, sequence)
	dst = append(dst, 0, 0, 0, 0)
	dst = append(dst, byte(len(lacing)))
	dst = append(dst, lacing...)
	for _, p := range packets {
		dst = append(dst, p...)
	}

	binary.LittleEndian.PutUint32(dst[start+22:], checksum(dst[start:]))
	return dst
}

// LastGranule scans the tail of a stream backwards for the last valid
// page and returns its granule position.
func LastGranule(tail []byte) (int64, bool) {
	for i := bytes.LastIndex(tail, capturePattern); i >= 0; i = bytes.LastIndex(tail[:i], capturePattern) {
		p, err := ParsePage(tail[i:])
		if err == nil && p.Granule >= 0 {
			return p.Granule, true
		}
	}
	return 0, false
}

// Sync returns the offset of the next capture pattern in b, or -1.
func Sync(b []byte) int {
	return bytes.Index(b, capturePattern)
}
