// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
)

// WAV16 builds a canonical 16-bit PCM WAV file. Extra chunks are written
// verbatim between fmt and data.
func WAV16(sampleRate, channels int, samples []int16, extra ...[]byte) []byte {
	return WAV(sampleRate, channels, 16, 1, pcm16(samples), extra...)
}

// WAV builds a WAV file around already encoded sample bytes.
func WAV(sampleRate, channels, bits int, format uint16, data []byte, extra ...[]byte) []byte {
	blockAlign := channels * bits / 8

	var extraLen int
	for _, e := range extra {
		extraLen += len(e)
	}

	out := make([]byte, 0, 44+extraLen+len(data)+1)
	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+extraLen+len(data)+len(data)%2))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, format)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate))
	out = binary.LittleEndian.AppendUint32(out, uint32(sampleRate*blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(bits))

	for _, e := range extra {
		out = append(out, e...)
	}

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(data)))
	out = append(out, data...)
	if len(data)%2 == 1 {
		out = append(out, 0)
	}

	return out
}

// RIFFChunk encodes a RIFF sub-chunk, padding odd sizes.
func RIFFChunk(id string, body []byte) []byte {
	out := append([]byte(id), 0, 0, 0, 0)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(body)))
	out = append(out, body...)
	if len(body)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

// Ramp returns n interleaved samples counting up from start.
func Ramp(n int, start int16) []int16 {
	s := make([]int16, n)
	for i := range s {
		s[i] = start + int16(i)
	}
	return s
}

func pcm16(samples []int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}
	return out
}
