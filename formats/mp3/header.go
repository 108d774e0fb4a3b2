// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
)

// Version of the MPEG audio stream.
type Version int

const (
	MPEG25 Version = iota
	_
	MPEG2
	MPEG1
)

func (v Version) String() string {
	switch v {
	case MPEG1:
		return "MPEG-1"
	case MPEG2:
		return "MPEG-2"
	case MPEG25:
		return "MPEG-2.5"
	}
	return "reserved"
}

// MaxFrameSize bounds any MPEG audio frame, free format excluded.
const MaxFrameSize = 2881

var (
	bitratesV1L3 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, -1}
	bitratesV2L3 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1}

	sampleRates = [4][3]int{
		MPEG25: {11025, 12000, 8000},
		MPEG2:  {22050, 24000, 16000},
		MPEG1:  {44100, 48000, 32000},
	}
)

// FrameHeader is a decoded layer III frame header.
type FrameHeader struct {
	Version    Version
	Protected  bool
	Bitrate    int // bits per second
	SampleRate int
	Padding    bool
	Mono       bool
}

// ParseFrameHeader decodes the 4-byte header at the start of b.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	if len(b) < 4 || b[0] != 0xFF || b[1]&0xE0 != 0xE0 {
		return FrameHeader{}, ErrBadSync
	}

	v := Version(b[1] >> 3 & 0x03)
	if v == 1 {
		return FrameHeader{}, ErrBadSync
	}
	if layer := b[1] >> 1 & 0x03; layer != 0x01 {
		if layer == 0 {
			return FrameHeader{}, ErrBadSync
		}
		return FrameHeader{}, ErrUnsupportedLayer
	}

	bi := b[2] >> 4
	si := b[2] >> 2 & 0x03
	if bi == 0x0F || si == 0x03 {
		return FrameHeader{}, ErrBadSync
	}
	if bi == 0 {
		return FrameHeader{}, ErrFreeBitrate
	}

	table := &bitratesV2L3
	if v == MPEG1 {
		table = &bitratesV1L3
	}

	return FrameHeader{
		Version:    v,
		Protected:  b[1]&0x01 == 0,
		Bitrate:    table[bi] * 1000,
		SampleRate: sampleRates[v][si],
		Padding:    b[2]&0x02 != 0,
		Mono:       b[3]>>6 == 0x03,
	}, nil
}

// SamplesPerFrame per channel.
func (h FrameHeader) SamplesPerFrame() int {
	if h.Version == MPEG1 {
		return 1152
	}
	return 576
}

// FrameSize is the encoded length including the header.
func (h FrameHeader) FrameSize() int {
	n := h.SamplesPerFrame() / 8 * h.Bitrate / h.SampleRate
	if h.Padding {
		n++
	}
	return n
}

func (h FrameHeader) sideInfoSize() int {
	switch {
	case h.Version == MPEG1 && h.Mono:
		return 17
	case h.Version == MPEG1:
		return 32
	case h.Mono:
		return 9
	}
	return 17
}

// TagSize returns the size of an ID3v2 tag at the start of b, or 0.
func TagSize(b []byte) int {
	if len(b) < 10 || !bytes.HasPrefix(b, []byte("ID3")) {
		return 0
	}
	for _, c := range b[6:10] {
		if c&0x80 != 0 {
			return 0
		}
	}

	size := 10 + (int(b[6])<<21 | int(b[7])<<14 | int(b[8])<<7 | int(b[9]))
	if b[5]&0x10 != 0 {
		size += 10
	}
	return size
}

// xingFrames reads the frame count from a Xing or Info header carried by
// the frame at the start of b.
func xingFrames(b []byte, h FrameHeader) (int64, bool) {
	off := 4 + h.sideInfoSize()
	if h.Protected {
		off += 2
	}
	if len(b) < off+12 {
		return 0, false
	}

	tag := b[off : off+4]
	if !bytes.Equal(tag, []byte("Xing")) && !bytes.Equal(tag, []byte("Info")) {
		return 0, false
	}
	if flags := binary.BigEndian.Uint32(b[off+4:]); flags&0x01 == 0 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint32(b[off+8:])), true
}

// FirstFrame locates the first frame at or after off that is followed by
// another valid frame header, or by the end of b.
func FirstFrame(b []byte, off int) (int, FrameHeader, bool) {
	for i := off; i+4 <= len(b); i++ {
		if b[i] != 0xFF {
			continue
		}
		h, err := ParseFrameHeader(b[i:])
		if err != nil {
			continue
		}
		next := i + h.FrameSize()
		if next+4 > len(b) {
			// Cannot confirm; accept only a frame that ends the buffer.
			if next == len(b) {
				return i, h, true
			}
			continue
		}
		if _, err := ParseFrameHeader(b[next:]); err == nil {
			return i, h, true
		}
	}
	return 0, FrameHeader{}, false
}
