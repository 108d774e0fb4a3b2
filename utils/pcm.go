// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"encoding/binary"
	"errors"
	"math"
)

var ErrUnsupportedSampleLayout = errors.New("unsupported PCM sample layout")

// Int16ToFloat32 normalizes a 16-bit sample to [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// Float32ToInt16 quantizes a normalized sample, the inverse of
// Int16ToFloat32. Out of range input saturates.
func Float32ToInt16(v float32) int16 {
	x := math.Round(float64(v) * 32768)
	switch {
	case x >= math.MaxInt16:
		return math.MaxInt16
	case x <= math.MinInt16:
		return math.MinInt16
	case math.IsNaN(x):
		return 0
	}
	return int16(x)
}

// IntToFloat32 normalizes a signed sample of the given bit depth.
func IntToFloat32(v int32, bits int) float32 {
	if bits <= 0 || bits > 32 {
		return 0
	}
	return float32(float64(v) / float64(uint64(1)<<(bits-1)))
}

// DecodePCM converts little-endian packed samples from src into dst and
// returns the number of float32 values written. 8-bit samples are unsigned,
// wider integer samples are signed; isFloat selects IEEE float for 32 and
// 64 bits. A trailing partial sample is ignored.
func DecodePCM(dst []float32, src []byte, bits int, isFloat bool) (int, error) {
	width := bits / 8
	if width == 0 || bits%8 != 0 {
		return 0, ErrUnsupportedSampleLayout
	}

	n := min(len(src)/width, len(dst))

	switch {
	case isFloat && bits == 32:
		for i := range n {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
		}
	case isFloat && bits == 64:
		for i := range n {
			dst[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(src[i*8:])))
		}
	case isFloat:
		return 0, ErrUnsupportedSampleLayout
	case bits == 8:
		for i := range n {
			dst[i] = float32(int(src[i])-128) / 128.0
		}
	case bits == 16:
		for i := range n {
			dst[i] = Int16ToFloat32(int16(binary.LittleEndian.Uint16(src[i*2:])))
		}
	case bits == 24:
		for i := range n {
			b := src[i*3:]
			v := int32(uint32(b[0])<<8|uint32(b[1])<<16|uint32(b[2])<<24) >> 8
			dst[i] = IntToFloat32(v, 24)
		}
	case bits == 32:
		for i := range n {
			dst[i] = IntToFloat32(int32(binary.LittleEndian.Uint32(src[i*4:])), 32)
		}
	default:
		return 0, ErrUnsupportedSampleLayout
	}

	return n, nil
}
