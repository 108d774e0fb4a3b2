// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"

	"github.com/ik5/audpcm/audio"
	"github.com/mewkiz/flac/frame"
)

const (
	// defaultMaxFrame applies when STREAMINFO leaves the frame size open.
	defaultMaxFrame = 1 << 20
	// maxHeaderLen is the longest possible frame header.
	maxHeaderLen = 16
)

// Units decodes one FLAC frame per unit.
type Units struct{}

func (Units) NewUnitDecoder(header []byte, size int64) (audio.UnitDecoder, error) {
	h, err := ParseHeader(header, size)
	if err != nil {
		return nil, err
	}

	maxFrame := int(h.Info.FrameSizeMax)
	if maxFrame == 0 {
		maxFrame = defaultMaxFrame
	}

	return &unitDecoder{
		hdr:     h,
		info:    h.StreamInfo(size),
		maxUnit: maxFrame + maxHeaderLen,
	}, nil
}

type unitDecoder struct {
	hdr     Header
	info    audio.StreamInfo
	maxUnit int
	out     []float32
}

func (d *unitDecoder) Info() audio.StreamInfo { return d.info }
func (d *unitDecoder) MaxUnitSize() int       { return d.maxUnit }
func (d *unitDecoder) Flush()                 {}
func (d *unitDecoder) Close() error           { return nil }

func (d *unitDecoder) DecodeUnit(buf []byte, pos int64, final bool) (audio.Unit, error) {
	if len(buf) == 0 {
		return audio.Unit{}, audio.ErrNeedMoreData
	}
	if pos < d.hdr.DataOffset {
		return audio.Unit{Consumed: int(min(d.hdr.DataOffset-pos, int64(len(buf))))}, nil
	}

	hdr, ok := frameHeaderLen(buf)
	switch {
	case !ok:
		return audio.Unit{Consumed: nextSync(buf)}, ErrBadSync
	case hdr == 0 && final:
		return audio.Unit{Consumed: len(buf)}, nil
	case hdr == 0:
		return audio.Unit{}, audio.ErrNeedMoreData
	}

	end := frameEnd(buf, hdr, final)
	if end == 0 {
		switch {
		case final:
			return audio.Unit{Consumed: nextSync(buf)}, ErrBadSync
		case len(buf) >= d.maxUnit:
			return audio.Unit{Consumed: nextSync(buf)}, ErrFrameTooLarge
		}
		return audio.Unit{}, audio.ErrNeedMoreData
	}

	samples, err := d.decodeFrame(buf[:end])
	if err != nil {
		return audio.Unit{Consumed: end}, err
	}
	return audio.Unit{Samples: samples, Consumed: end}, nil
}

func (d *unitDecoder) decodeFrame(b []byte) (samples []float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", audio.ErrDecodeFailed, r)
		}
	}()

	f, err := frame.Parse(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecodeFailed, err)
	}

	d.out = interleave(d.out[:0], f, d.info.BitsPerSample)
	return d.out, nil
}

// nextSync returns the offset of the next possible frame sync after b[0].
// A trailing 0xFF is kept since its second byte may still arrive.
func nextSync(b []byte) int {
	for i := 1; i < len(b); i++ {
		if b[i] == 0xFF && (i+1 == len(b) || b[i+1]&0xFE == 0xF8) {
			return i
		}
	}
	return len(b)
}
