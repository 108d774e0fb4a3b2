// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math/bits"
)

// AIFF encodes big-endian PCM samples of the given width.
func AIFF(sampleRate, channels, bitDepth int, samples []int32) []byte {
	width := bitDepth / 8
	data := make([]byte, 0, len(samples)*width)
	for _, s := range samples {
		for i := width - 1; i >= 0; i-- {
			data = append(data, byte(s>>(8*i)))
		}
	}

	comm := make([]byte, 18)
	binary.BigEndian.PutUint16(comm[0:], uint16(channels))
	binary.BigEndian.PutUint32(comm[2:], uint32(len(samples)/channels))
	binary.BigEndian.PutUint16(comm[6:], uint16(bitDepth))
	putExtended(comm[8:], uint64(sampleRate))

	ssnd := append(make([]byte, 8), data...)
	if len(ssnd)%2 == 1 {
		ssnd = append(ssnd, 0)
	}

	out := []byte("FORM\x00\x00\x00\x00AIFF")
	out = appendChunk(out, "COMM", comm)
	out = appendChunk(out, "SSND", ssnd)
	binary.BigEndian.PutUint32(out[4:], uint32(len(out)-8))
	return out
}

func appendChunk(dst []byte, id string, body []byte) []byte {
	dst = append(dst, id...)
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(body)))
	return append(dst, body...)
}

// putExtended writes v as an 80-bit IEEE 754 extended float.
func putExtended(b []byte, v uint64) {
	if v == 0 {
		return
	}
	e := bits.Len64(v) - 1
	binary.BigEndian.PutUint16(b, uint16(16383+e))
	binary.BigEndian.PutUint64(b[2:], v<<(63-e))
}
