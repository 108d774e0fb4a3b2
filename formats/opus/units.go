// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"fmt"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/formats/ogg"
)

// packetDecoder turns one Opus packet into interleaved samples at
// SampleRate. The result is valid until the next call.
type packetDecoder interface {
	decode(pkt []byte) ([]float32, error)
	reset() error
}

// Units decodes one Ogg page per unit.
type Units struct{}

func (Units) NewUnitDecoder(header []byte, size int64) (audio.UnitDecoder, error) {
	h, err := ogg.ScanHeaders(header)
	if err != nil {
		return nil, err
	}
	if h.Codec != ogg.CodecOpus {
		return nil, fmt.Errorf("%w: found %s", ErrNotOpus, h.Codec)
	}

	head, err := ParseHead(h.Packets[0])
	if err != nil {
		return nil, err
	}
	if head.Channels > 2 || head.MappingFamily > 1 {
		return nil, ErrChannelMapping
	}

	pd, err := newPacketDecoder(head.Channels)
	if err != nil {
		return nil, err
	}
	return newUnitDecoder(h, head, pd, header, size), nil
}

func newUnitDecoder(h ogg.Headers, head Head, pd packetDecoder, header []byte, size int64) *unitDecoder {
	d := &unitDecoder{
		pd:      pd,
		demux:   ogg.NewDemuxer(h.Serial),
		offset:  h.DataOffset,
		preSkip: int64(head.PreSkip),
		info: audio.StreamInfo{
			SampleRate: SampleRate,
			Channels:   head.Channels,
			DataOffset: h.DataOffset,
		},
	}
	if size > h.DataOffset {
		d.info.DataSize = size - h.DataOffset
	}
	if int64(len(header)) >= size {
		if g, ok := ogg.LastGranule(header); ok {
			d.info.TotalFrames = max(g-d.preSkip, 0)
		}
	}
	return d
}

type unitDecoder struct {
	pd      packetDecoder
	demux   *ogg.Demuxer
	info    audio.StreamInfo
	offset  int64
	preSkip int64

	// decoded counts frames since the first audio page, pre-skip
	// included. Granule positions are compared against it while
	// tracking, which a seek turns off.
	decoded  int64
	tracking bool

	out []float32
}

func (d *unitDecoder) Info() audio.StreamInfo { return d.info }

func (d *unitDecoder) ScanTail(tail []byte) {
	if g, ok := ogg.LastGranule(tail); ok {
		d.info.TotalFrames = max(g-d.preSkip, 0)
	}
}

func (d *unitDecoder) MaxUnitSize() int { return ogg.MaxPageSize }
func (d *unitDecoder) Close() error     { return nil }

func (d *unitDecoder) Flush() {
	_ = d.pd.reset()
	d.demux.Reset()
	d.tracking = false
}

func (d *unitDecoder) DecodeUnit(buf []byte, pos int64, final bool) (audio.Unit, error) {
	if len(buf) == 0 {
		return audio.Unit{}, audio.ErrNeedMoreData
	}
	if pos <= d.offset {
		d.decoded, d.tracking = 0, true
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
		if bytes.HasPrefix(pkt, []byte("OpusHead")) || bytes.HasPrefix(pkt, []byte("OpusTags")) {
			continue
		}
		s, err := d.pd.decode(pkt)
		if err != nil {
			return audio.Unit{Consumed: n}, err
		}
		d.out = append(d.out, s...)
	}

	if d.tracking && len(d.out) > 0 {
		ch := int64(d.info.Channels)
		start := d.decoded
		frames := int64(len(d.out)) / ch

		keep := frames
		if page.Last() && page.Granule >= 0 {
			keep = min(keep, max(page.Granule-start, 0))
		}
		from := min(max(d.preSkip-start, 0), keep)
		d.out = d.out[from*ch : keep*ch]
		d.decoded += frames
	}
	return audio.Unit{Samples: d.out, Consumed: n}, nil
}
