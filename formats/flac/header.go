// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ik5/audpcm/audio"
	"github.com/mewkiz/flac/meta"
)

const signature = "fLaC"

// Header is the metadata section in front of the first frame.
type Header struct {
	Info       meta.StreamInfo
	DataOffset int64
}

func (h Header) StreamInfo(size int64) audio.StreamInfo {
	info := audio.StreamInfo{
		SampleRate:    int(h.Info.SampleRate),
		Channels:      int(h.Info.NChannels),
		BitsPerSample: int(h.Info.BitsPerSample),
		TotalFrames:   int64(h.Info.NSamples),
		DataOffset:    h.DataOffset,
	}
	if size > h.DataOffset {
		info.DataSize = size - h.DataOffset
	}
	return info
}

// ParseHeader walks the metadata blocks at the start of b. It returns
// audio.ErrNeedMoreData while b ends inside them.
func ParseHeader(b []byte, size int64) (Header, error) {
	short := int64(len(b)) < size
	more := func(err error) error {
		if short {
			return audio.ErrNeedMoreData
		}
		return err
	}

	if len(b) < len(signature) {
		return Header{}, more(ErrNotFlacFile)
	}
	if !bytes.HasPrefix(b, []byte(signature)) {
		return Header{}, ErrNotFlacFile
	}

	var (
		h   Header
		off = len(signature)
	)
	for first := true; ; first = false {
		if off+4 > len(b) {
			return Header{}, more(fmt.Errorf("%w: truncated metadata", audio.ErrContainerInvalid))
		}

		block, err := meta.New(bytes.NewReader(b[off:]))
		if err != nil {
			return Header{}, fmt.Errorf("%w: metadata block at %d: %w", audio.ErrContainerInvalid, off, err)
		}
		end := off + 4 + int(block.Length)

		if first {
			if block.Type != meta.TypeStreamInfo {
				return Header{}, ErrNoStreamInfo
			}
			if end > len(b) {
				return Header{}, more(fmt.Errorf("%w: truncated STREAMINFO", audio.ErrContainerInvalid))
			}
			if err := block.Parse(); err != nil {
				return Header{}, fmt.Errorf("%w: STREAMINFO: %w", audio.ErrContainerInvalid, err)
			}
			si, ok := block.Body.(*meta.StreamInfo)
			if !ok {
				return Header{}, ErrNoStreamInfo
			}
			h.Info = *si
		}

		off = end
		if block.IsLast {
			break
		}
	}

	if off > len(b) {
		// The last block's body runs past b; the first frame is still ahead.
		if !short {
			return Header{}, fmt.Errorf("%w: truncated metadata", audio.ErrContainerInvalid)
		}
	}
	h.DataOffset = int64(off)
	return h, nil
}

// frameHeaderLen validates the frame header at the start of b and returns
// its length including the CRC-8 byte. ok is false for an invalid header;
// n is 0 with ok true when b is too short to tell.
func frameHeaderLen(b []byte) (n int, ok bool) {
	if len(b) < 2 {
		return 0, len(b) == 0 || b[0] == 0xFF
	}
	if b[0] != 0xFF || b[1]&0xFE != 0xF8 {
		return 0, false
	}
	if len(b) < 5 {
		return 0, true
	}

	bs, sr := b[2]>>4, b[2]&0x0F
	ch, ss := b[3]>>4, b[3]>>1&0x07
	if bs == 0 || sr == 0x0F || ch > 10 || ss == 3 || b[3]&0x01 != 0 {
		return 0, false
	}

	// UTF-8 style coded frame or sample number.
	lead := b[4]
	width := 1
	switch {
	case lead&0x80 == 0:
	case lead&0xE0 == 0xC0:
		width = 2
	case lead&0xF0 == 0xE0:
		width = 3
	case lead&0xF8 == 0xF0:
		width = 4
	case lead&0xFC == 0xF8:
		width = 5
	case lead&0xFE == 0xFC:
		width = 6
	case lead == 0xFE:
		width = 7
	default:
		return 0, false
	}

	n = 4 + width
	switch bs {
	case 6:
		n++
	case 7:
		n += 2
	}
	switch sr {
	case 12:
		n++
	case 13, 14:
		n += 2
	}
	n++ // CRC-8

	if len(b) < n {
		return 0, true
	}
	for _, c := range b[5 : 4+width] {
		if c&0xC0 != 0x80 {
			return 0, false
		}
	}
	if crc8(b[:n-1]) != b[n-1] {
		return 0, false
	}
	return n, true
}

// frameEnd finds the end of the frame starting at b[0], whose header is
// hdr bytes long: the first position that is followed by a valid frame
// header and preceded by a matching CRC-16, or the end of b when atEnd.
// It returns 0 when b does not yet hold the whole frame.
func frameEnd(b []byte, hdr int, atEnd bool) int {
	var (
		crc     uint16
		checked int
	)
	matches := func(e int) bool {
		crc = crc16Update(crc, b[checked:e-2])
		checked = e - 2
		return crc == binary.BigEndian.Uint16(b[e-2:e])
	}

	for e := hdr + 3; e < len(b); e++ {
		if b[e] != 0xFF {
			continue
		}
		n, ok := frameHeaderLen(b[e:])
		if !ok {
			continue
		}
		if n == 0 {
			// The next header is cut off; only the end of the source
			// confirms this end.
			if matches(e) {
				if atEnd {
					return e
				}
				return 0
			}
			continue
		}
		if matches(e) {
			return e
		}
	}

	if atEnd && len(b) >= hdr+3 && matches(len(b)) {
		return len(b)
	}
	return 0
}
