// SPDX-License-Identifier: EPL-2.0

package audiotest

import "encoding/binary"

// MP3FrameSize is the length of the frames built by MP3Frame.
const MP3FrameSize = 417

// MP3Frame returns a silent MPEG-1 layer III frame, 128 kbps, 44.1 kHz,
// stereo, without CRC. Its side info and main data are all zero.
func MP3Frame() []byte {
	f := make([]byte, MP3FrameSize)
	f[0], f[1], f[2], f[3] = 0xFF, 0xFB, 0x90, 0x00
	return f
}

// MP3 concatenates n silent frames.
func MP3(n int) []byte {
	out := make([]byte, 0, n*MP3FrameSize)
	for range n {
		out = append(out, MP3Frame()...)
	}
	return out
}

// XingFrame is a silent frame carrying a Xing header with a frame count.
func XingFrame(frames uint32) []byte {
	f := MP3Frame()
	// 4 byte header + 32 bytes of MPEG-1 stereo side info.
	copy(f[36:], "Xing")
	binary.BigEndian.PutUint32(f[40:], 0x01)
	binary.BigEndian.PutUint32(f[44:], frames)
	return f
}

// ID3v2 returns an ID3v2.4 tag with a zeroed body of the given size.
func ID3v2(body int) []byte {
	tag := make([]byte, 10+body)
	copy(tag, "ID3")
	tag[3] = 4
	tag[6] = byte(body >> 21 & 0x7F)
	tag[7] = byte(body >> 14 & 0x7F)
	tag[8] = byte(body >> 7 & 0x7F)
	tag[9] = byte(body & 0x7F)
	return tag
}

// ID3v1 returns a 128-byte trailing tag.
func ID3v1() []byte {
	tag := make([]byte, 128)
	copy(tag, "TAG")
	return tag
}
