// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/utils"
)

// Units decodes one MPEG frame per unit.
type Units struct{}

func (Units) NewUnitDecoder(header []byte, size int64) (audio.UnitDecoder, error) {
	short := int64(len(header)) < size

	tag := TagSize(header)
	if tag+4 > len(header) {
		if short {
			return nil, audio.ErrNeedMoreData
		}
		return nil, ErrNoFrames
	}

	off, h, ok := FirstFrame(header, tag)
	if !ok {
		if short {
			return nil, audio.ErrNeedMoreData
		}
		return nil, unsupportedOr(header[tag:], ErrNoFrames)
	}
	if h.Version == MPEG25 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLayer, h.Version)
	}

	info := audio.StreamInfo{
		SampleRate:    h.SampleRate,
		Channels:      2,
		BitsPerSample: 16,
		DataOffset:    int64(off),
		Bitrate:       h.Bitrate,
	}
	if size > 0 {
		info.DataSize = size - info.DataOffset
	}
	if frames, ok := xingFrames(header[off:], h); ok {
		info.TotalFrames = frames * int64(h.SamplesPerFrame())
		// VBR: the first header's bitrate says nothing about the rest.
		info.Bitrate = 0
	}

	return &unitDecoder{info: info}, nil
}

// unsupportedOr reports a recognizable but unsupported frame when b has one.
func unsupportedOr(b []byte, fallback error) error {
	for i := range b {
		if b[i] != 0xFF {
			continue
		}
		if _, err := ParseFrameHeader(b[i:]); errors.Is(err, audio.ErrUnsupportedCodec) {
			return err
		}
	}
	return fallback
}

// frameQueue hands go-mp3 exactly the frames pushed into it.
type frameQueue struct {
	buf []byte
}

func (q *frameQueue) Read(p []byte) (int, error) {
	if len(q.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	return n, nil
}

type unitDecoder struct {
	info audio.StreamInfo

	queue frameQueue
	dec   *gomp3.Decoder
	pcm   []byte
	out   []float32
}

func (d *unitDecoder) Info() audio.StreamInfo { return d.info }
func (d *unitDecoder) MaxUnitSize() int       { return MaxFrameSize }

// Flush drops the bit reservoir so frames after a seek do not borrow
// main data from before it.
func (d *unitDecoder) Flush() {
	d.dec = nil
	d.queue.buf = nil
}

func (d *unitDecoder) Close() error {
	d.Flush()
	return nil
}

func (d *unitDecoder) DecodeUnit(buf []byte, pos int64, final bool) (audio.Unit, error) {
	if len(buf) == 0 {
		return audio.Unit{}, audio.ErrNeedMoreData
	}
	if pos < d.info.DataOffset {
		return audio.Unit{Consumed: int(min(d.info.DataOffset-pos, int64(len(buf))))}, nil
	}

	if len(buf) < 4 {
		if final {
			return audio.Unit{Consumed: len(buf)}, nil
		}
		return audio.Unit{}, audio.ErrNeedMoreData
	}

	h, err := ParseFrameHeader(buf)
	if err != nil {
		if bytes.HasPrefix(buf, []byte("TAG")) {
			return d.skipTrailer(buf, final)
		}
		return audio.Unit{Consumed: nextSync(buf)}, ErrBadSync
	}

	size := h.FrameSize()
	if len(buf) < size {
		if final {
			return audio.Unit{Consumed: len(buf)}, ErrTruncatedFrame
		}
		return audio.Unit{}, audio.ErrNeedMoreData
	}

	samples, err := d.decodeFrame(buf[:size], h)
	if err != nil {
		d.Flush()
		return audio.Unit{Consumed: size}, err
	}
	return audio.Unit{Samples: samples, Consumed: size}, nil
}

// skipTrailer drops an ID3v1 tag.
func (d *unitDecoder) skipTrailer(buf []byte, final bool) (audio.Unit, error) {
	const tagLen = 128
	if len(buf) < tagLen && !final {
		return audio.Unit{}, audio.ErrNeedMoreData
	}
	return audio.Unit{Consumed: min(tagLen, len(buf))}, nil
}

func (d *unitDecoder) decodeFrame(frame []byte, h FrameHeader) (samples []float32, err error) {
	// go-mp3 panics on some corrupt bitstreams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", audio.ErrDecodeFailed, r)
		}
	}()

	d.queue.buf = frame
	if d.dec == nil {
		d.dec, err = gomp3.NewDecoder(&d.queue)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", audio.ErrDecodeFailed, err)
		}
	}

	// Stereo int16 output regardless of the stream's channel mode.
	n := h.SamplesPerFrame() * 4
	if cap(d.pcm) < n {
		d.pcm = make([]byte, n)
		d.out = make([]float32, n/2)
	}
	d.pcm = d.pcm[:n]

	if _, err := io.ReadFull(d.dec, d.pcm); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrDecodeFailed, err)
	}

	m, _ := utils.DecodePCM(d.out, d.pcm, 16, false)
	return d.out[:m], nil
}

// nextSync returns how many bytes to skip to reach the next possible sync
// byte, at least one.
func nextSync(buf []byte) int {
	if i := bytes.IndexByte(buf[1:], 0xFF); i >= 0 {
		return i + 1
	}
	return len(buf)
}
