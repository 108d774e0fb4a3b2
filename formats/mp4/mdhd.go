// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"encoding/binary"
	"fmt"
)

// MediaHeader is the content of an mdhd box. Version 0 boxes store the
// times and duration in 32 bits, version 1 boxes in 64 bits.
type MediaHeader struct {
	Version          uint8
	CreationTime     uint64
	ModificationTime uint64
	Timescale        uint32
	Duration         uint64
}

// ParseMediaHeader reads the mdhd box at the start of b.
func ParseMediaHeader(b []byte) (MediaHeader, error) {
	p, err := payloadOf(b, TypeMdhd)
	if err != nil {
		return MediaHeader{}, err
	}
	if len(p) < 4 {
		return MediaHeader{}, ErrShortPayload
	}

	h := MediaHeader{Version: p[0]}

	switch h.Version {
	case 0:
		if len(p) < 20 {
			return MediaHeader{}, ErrShortPayload
		}
		h.CreationTime = uint64(binary.BigEndian.Uint32(p[4:]))
		h.ModificationTime = uint64(binary.BigEndian.Uint32(p[8:]))
		h.Timescale = binary.BigEndian.Uint32(p[12:])
		h.Duration = uint64(binary.BigEndian.Uint32(p[16:]))
	case 1:
		if len(p) < 32 {
			return MediaHeader{}, ErrShortPayload
		}
		h.CreationTime = binary.BigEndian.Uint64(p[4:])
		h.ModificationTime = binary.BigEndian.Uint64(p[12:])
		h.Timescale = binary.BigEndian.Uint32(p[20:])
		h.Duration = binary.BigEndian.Uint64(p[24:])
	default:
		return MediaHeader{}, fmt.Errorf("%w: mdhd version %d", ErrBadVersion, h.Version)
	}

	return h, nil
}

// DurationMs converts the duration to milliseconds; 0 when the timescale
// is unset.
func (h MediaHeader) DurationMs() uint64 {
	if h.Timescale == 0 {
		return 0
	}
	return scale(h.Duration, 1000, uint64(h.Timescale))
}
