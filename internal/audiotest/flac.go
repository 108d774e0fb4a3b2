// SPDX-License-Identifier: EPL-2.0

package audiotest

import "encoding/binary"

const (
	// FLACBlockSize is the number of frames in each FLAC frame built here.
	FLACBlockSize = 192
	// FLACSampleRate is the rate announced by FLAC streams built here.
	FLACSampleRate = 44100
	// FLACHeaderSize is the length of the signature and STREAMINFO block.
	FLACHeaderSize = 4 + 4 + 34
)

// FLAC returns a 16-bit stream with one frame per element of frames. Each
// element holds one value per channel; every subframe is CONSTANT.
func FLAC(channels int, frames ...[]int16) []byte {
	out := FLACStreamInfo(channels, uint64(len(frames)*FLACBlockSize), true)
	for i, vals := range frames {
		out = append(out, FLACFrame(i, vals)...)
	}
	return out
}

// FLACStreamInfo returns the signature followed by a STREAMINFO block.
func FLACStreamInfo(channels int, total uint64, last bool) []byte {
	out := make([]byte, FLACHeaderSize)
	copy(out, "fLaC")
	if last {
		out[4] = 0x80
	}
	out[7] = 34

	si := out[8:]
	binary.BigEndian.PutUint16(si[0:], FLACBlockSize)
	binary.BigEndian.PutUint16(si[2:], FLACBlockSize)
	packed := uint64(FLACSampleRate)<<44 | uint64(channels-1)<<41 | uint64(16-1)<<36 | total&(1<<36-1)
	binary.BigEndian.PutUint64(si[10:], packed)
	return out
}

// FLACPadding returns a PADDING metadata block.
func FLACPadding(n int, last bool) []byte {
	b := make([]byte, 4+n)
	b[0] = 1
	if last {
		b[0] |= 0x80
	}
	b[1], b[2], b[3] = byte(n>>16), byte(n>>8), byte(n)
	return b
}

// FLACFrame encodes frame number num with a constant subframe per value.
func FLACFrame(num int, vals []int16) []byte {
	f := []byte{0xFF, 0xF8, 0x19, 0x08, byte(num & 0x7F)}
	if len(vals) == 2 {
		f[3] = 0x18
	}
	f = append(f, flacCRC8(f))

	for _, v := range vals {
		f = append(f, 0x00, byte(uint16(v)>>8), byte(v))
	}

	crc := flacCRC16(f)
	return append(f, byte(crc>>8), byte(crc))
}

func flacCRC8(b []byte) uint8 {
	var c uint8
	for _, v := range b {
		c ^= v
		for range 8 {
			if c&0x80 != 0 {
				c = c<<1 ^ 0x07
			} else {
				c <<= 1
			}
		}
	}
	return c
}

func flacCRC16(b []byte) uint16 {
	var c uint16
	for _, v := range b {
		c ^= uint16(v) << 8
		for range 8 {
			if c&0x8000 != 0 {
				c = c<<1 ^ 0x8005
			} else {
				c <<= 1
			}
		}
	}
	return c
}
