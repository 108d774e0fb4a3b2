// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/formats/ogg"
	"github.com/jfreymuth/vorbis"
)

// Units decodes one Ogg page per unit.
type Units struct{}

// NewUnitDecoder reads the identification, comment and setup headers from
// the start of header. When header holds the whole file the length is
// taken from the granule position of the last page.
func (Units) NewUnitDecoder(header []byte, size int64) (audio.UnitDecoder, error) {
	h, err := ogg.ScanHeaders(header)
	if err != nil {
		return nil, err
	}
	if h.Codec != ogg.CodecVorbis {
		return nil, fmt.Errorf("%w: found %s", ErrNotVorbis, h.Codec)
	}

	d := &unitDecoder{
		demux:  ogg.NewDemuxer(h.Serial),
		offset: h.DataOffset,
	}
	for _, pkt := range h.Packets {
		if err := d.dec.ReadHeader(pkt); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadHeaders, err)
		}
	}
	if !d.dec.HeadersRead() || d.dec.Channels() == 0 {
		return nil, ErrBadHeaders
	}

	d.info = audio.StreamInfo{
		SampleRate: d.dec.SampleRate(),
		Channels:   d.dec.Channels(),
		Bitrate:    d.dec.Bitrate.Nominal,
		DataOffset: h.DataOffset,
	}
	if size > h.DataOffset {
		d.info.DataSize = size - h.DataOffset
	}
	if int64(len(header)) >= size {
		if g, ok := ogg.LastGranule(header); ok {
			d.info.TotalFrames = g
		}
	}
	d.buf = make([]float32, d.dec.BufferSize())
	return d, nil
}

type unitDecoder struct {
	dec    vorbis.Decoder
	demux  *ogg.Demuxer
	info   audio.StreamInfo
	offset int64

	// emitted counts frames since the first audio page; it is only
	// meaningful while tracking, which a seek turns off.
	emitted  int64
	tracking bool

	buf []float32
	out []float32
}

func (d *unitDecoder) Info() audio.StreamInfo { return d.info }

// ScanTail takes the length from the granule of the last page in tail.
func (d *unitDecoder) ScanTail(tail []byte) {
	if g, ok := ogg.LastGranule(tail); ok {
		d.info.TotalFrames = g
	}
}

func (d *unitDecoder) MaxUnitSize() int { return ogg.MaxPageSize }
func (d *unitDecoder) Close() error     { return nil }

func (d *unitDecoder) Flush() {
	d.dec.Clear()
	d.demux.Reset()
	d.tracking = false
}

func (d *unitDecoder) DecodeUnit(buf []byte, pos int64, final bool) (audio.Unit, error) {
	if len(buf) == 0 {
		return audio.Unit{}, audio.ErrNeedMoreData
	}
	if pos <= d.offset {
		d.emitted, d.tracking = 0, true
	}
	if pos < d.offset {
		return audio.Unit{Consumed: int(min(d.offset-pos, int64(len(buf))))}, nil
	}

	packets, page, n, err := d.demux.ReadPage(buf, final)
	if err != nil {
		return audio.Unit{Consumed: n}, err
	}

	d.out = d.out[:0]
	for _, pkt := range packets {
		if vorbis.IsHeader(pkt) {
			continue
		}
		if err := d.decode(pkt); err != nil {
			d.dec.Clear()
			return audio.Unit{Consumed: n}, err
		}
	}

	ch := d.info.Channels
	if d.tracking && len(d.out) > 0 {
		frames := int64(len(d.out) / ch)
		if page.Last() && page.Granule >= 0 && d.emitted+frames > page.Granule {
			frames = max(page.Granule-d.emitted, 0)
			d.out = d.out[:frames*int64(ch)]
		}
		d.emitted += frames
	}
	return audio.Unit{Samples: d.out, Consumed: n}, nil
}

func (d *unitDecoder) decode(pkt []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrBadPacket, r)
		}
	}()

	s, err := d.dec.DecodeInto(pkt, d.buf)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadPacket, err)
	}
	for _, v := range s {
		d.out = append(d.out, max(-1, min(1, v)))
	}
	return nil
}
