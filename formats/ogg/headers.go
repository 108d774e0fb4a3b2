// SPDX-License-Identifier: EPL-2.0

package ogg

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

// Headers is the header section of a logical stream.
type Headers struct {
	Codec   Codec
	Serial  uint32
	Packets [][]byte
	// DataOffset is the offset of the first page after the page that
	// completes the last header packet.
	DataOffset int64
}

// HeaderCount is the number of header packets a codec starts with.
func HeaderCount(c Codec) int {
	switch c {
	case CodecVorbis:
		return 3
	case CodecOpus:
		return 2
	}
	return 1
}

// ScanHeaders collects the header packets from the start of b. It
// returns audio.ErrNeedMoreData when b ends before they are complete.
func ScanHeaders(b []byte) (Headers, error) {
	var (
		h   Headers
		a   Assembler
		off int
	)
	for {
		p, err := ParsePage(b[off:])
		if err != nil {
			if err == audio.ErrNeedMoreData {
				return h, err
			}
			return h, fmt.Errorf("%w: page at %d: %w", audio.ErrContainerInvalid, off, err)
		}
		off += p.Size

		for _, pkt := range a.Push(p) {
			if len(h.Packets) == 0 {
				h.Codec = Identify(pkt)
				h.Serial = a.Serial
				if h.Codec == CodecUnknown {
					return h, fmt.Errorf("%w: unrecognised ogg stream", audio.ErrUnsupportedCodec)
				}
			}
			if len(h.Packets) < HeaderCount(h.Codec) {
				h.Packets = append(h.Packets, pkt)
			}
		}
		if h.Codec != CodecUnknown && len(h.Packets) == HeaderCount(h.Codec) {
			h.DataOffset = int64(off)
			return h, nil
		}
	}
}
