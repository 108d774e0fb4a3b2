// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/utils"
)

// Units decodes WAV data in blocks of whole frames.
type Units struct {
	// Frames per unit, defaultFrames when zero.
	Frames int
}

func (u Units) NewUnitDecoder(header []byte, size int64) (audio.UnitDecoder, error) {
	h, err := ParseHeader(header, size)
	if err != nil {
		return nil, err
	}

	frames := u.Frames
	if frames <= 0 {
		frames = defaultFrames
	}

	return &unitDecoder{
		hdr:    h,
		frames: frames,
		out:    make([]float32, frames*h.Channels),
	}, nil
}

type unitDecoder struct {
	hdr    Header
	frames int
	out    []float32
}

func (d *unitDecoder) Info() audio.StreamInfo { return d.hdr.StreamInfo() }
func (d *unitDecoder) Flush()                 {}
func (d *unitDecoder) MaxUnitSize() int       { return d.frames * d.hdr.BlockAlign }
func (d *unitDecoder) Close() error           { return nil }

func (d *unitDecoder) DecodeUnit(buf []byte, pos int64, final bool) (audio.Unit, error) {
	if len(buf) == 0 {
		return audio.Unit{}, audio.ErrNeedMoreData
	}

	start := d.hdr.DataOffset
	end := start + d.hdr.DataSize

	// Header bytes and chunks trailing the sample data carry no audio.
	if pos < start {
		return audio.Unit{Consumed: int(min(start-pos, int64(len(buf))))}, nil
	}
	if pos >= end {
		return audio.Unit{Consumed: len(buf)}, nil
	}

	block := d.hdr.BlockAlign
	if off := int((pos - start) % int64(block)); off != 0 {
		return audio.Unit{Consumed: min(block-off, len(buf))}, nil
	}

	avail := int(min(int64(len(buf)), end-pos))
	frames := min(avail/block, d.frames)
	if frames == 0 {
		// A partial frame is dropped only once nothing can complete it.
		if final || avail < len(buf) {
			return audio.Unit{Consumed: avail}, nil
		}
		return audio.Unit{}, audio.ErrNeedMoreData
	}

	n, err := utils.DecodePCM(d.out, buf[:frames*block], d.hdr.BitsPerSample, d.hdr.IsFloat())
	if err != nil {
		return audio.Unit{Consumed: frames * block}, fmt.Errorf("%w: %w", audio.ErrDecodeFailed, err)
	}

	return audio.Unit{Samples: d.out[:n], Consumed: frames * block}, nil
}
