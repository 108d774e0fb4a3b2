// SPDX-License-Identifier: EPL-2.0

package mp4

import "encoding/binary"

// SampleTable summarizes the shape of a sample table. It does not index
// individual samples.
type SampleTable struct {
	HasSizes    bool
	SampleCount uint32
	// DefaultSampleSize is 0 when sizes vary per sample.
	DefaultSampleSize uint32

	HasOffsets   bool
	LargeOffsets bool
	ChunkCount   uint32
}

// VariableSizes reports whether each sample carries its own size.
func (t SampleTable) VariableSizes() bool {
	return t.HasSizes && t.DefaultSampleSize == 0
}

// ParseSampleTable reads stsz and stco (or co64) from an stbl payload.
// Missing boxes are not an error; the table records what was found.
func ParseSampleTable(stbl []byte) SampleTable {
	var t SampleTable

	if s, ok := FindBox(stbl, TypeStsz); ok {
		if p := s.Payload(stbl); len(p) >= 12 {
			t.HasSizes = true
			t.DefaultSampleSize = binary.BigEndian.Uint32(p[4:])
			t.SampleCount = binary.BigEndian.Uint32(p[8:])
		}
	}

	s, ok := FindBox(stbl, TypeStco)
	if !ok {
		s, ok = FindBox(stbl, TypeCo64)
		t.LargeOffsets = ok
	}
	if ok {
		if p := s.Payload(stbl); len(p) >= 8 {
			t.HasOffsets = true
			t.ChunkCount = binary.BigEndian.Uint32(p[4:])
		} else {
			t.LargeOffsets = false
		}
	}

	return t
}
