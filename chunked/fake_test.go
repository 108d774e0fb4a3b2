// SPDX-License-Identifier: EPL-2.0

package chunked

import (
	"bytes"
	"fmt"

	"github.com/ik5/audpcm/audio"
)

// fakeFormat is the tag the fake backend is registered under.
const fakeFormat = audio.Ogg

// fakeUnits parses streams of the form "FAKE" followed by units:
//
//	'U' v  one sample of value v/100
//	'X' ?  a bad unit, skipped with its payload
//	'!'    a fatal error
//
// Any other byte is garbage and skipped one at a time.
type fakeUnits struct {
	// need is how many header bytes the stream metadata spans.
	need  int
	total int64
	mode  fakeMode

	last *fakeDecoder
	// tries counts NewUnitDecoder calls.
	tries int
}

type fakeMode int

const (
	fakeNormal fakeMode = iota
	// fakeStuck never sees a complete unit.
	fakeStuck
	// fakeIdle succeeds without consuming anything.
	fakeIdle
)

func (f *fakeUnits) NewUnitDecoder(header []byte, size int64) (audio.UnitDecoder, error) {
	f.tries++
	need := max(f.need, 4)
	if len(header) < need {
		if int64(len(header)) < size {
			return nil, audio.ErrNeedMoreData
		}
		return nil, fmt.Errorf("%w: short fake header", audio.ErrContainerInvalid)
	}
	if !bytes.HasPrefix(header, []byte("FAKE")) {
		return nil, fmt.Errorf("%w: not a fake stream", audio.ErrContainerInvalid)
	}

	f.last = &fakeDecoder{mode: f.mode, info: audio.StreamInfo{
		SampleRate:  1000,
		Channels:    1,
		TotalFrames: f.total,
		DataOffset:  4,
		DataSize:    size - 4,
	}}
	return f.last, nil
}

type fakeDecoder struct {
	mode    fakeMode
	info    audio.StreamInfo
	out     [1]float32
	flushes int
	closes  int
}

func (d *fakeDecoder) Info() audio.StreamInfo { return d.info }
func (d *fakeDecoder) MaxUnitSize() int       { return 2 }
func (d *fakeDecoder) Flush()                 { d.flushes++ }

func (d *fakeDecoder) Close() error {
	d.closes++
	return nil
}

func (d *fakeDecoder) DecodeUnit(buf []byte, pos int64, final bool) (audio.Unit, error) {
	if len(buf) == 0 {
		return audio.Unit{}, audio.ErrNeedMoreData
	}
	if pos < d.info.DataOffset {
		return audio.Unit{Consumed: int(min(d.info.DataOffset-pos, int64(len(buf))))}, nil
	}

	switch d.mode {
	case fakeStuck:
		return audio.Unit{}, audio.ErrNeedMoreData
	case fakeIdle:
		return audio.Unit{}, nil
	}

	switch buf[0] {
	case 'U', 'X':
		if len(buf) < 2 {
			if final {
				return audio.Unit{Consumed: 1}, audio.ErrDecodeFailed
			}
			return audio.Unit{}, audio.ErrNeedMoreData
		}
		if buf[0] == 'X' {
			return audio.Unit{Consumed: 2}, audio.ErrDecodeFailed
		}
		d.out[0] = float32(buf[1]) / 100
		return audio.Unit{Samples: d.out[:], Consumed: 2}, nil
	case '!':
		return audio.Unit{}, audio.ErrUnsupportedCodec
	}
	return audio.Unit{}, audio.ErrDecodeFailed
}

// fakeRegistry registers f for fakeFormat.
func fakeRegistry(f *fakeUnits) *audio.Registry {
	r := audio.NewRegistry()
	r.RegisterUnits(fakeFormat, f)
	return r
}

// fakeStream builds a stream holding one unit per value.
func fakeStream(vals ...byte) []byte {
	s := []byte("FAKE")
	for _, v := range vals {
		s = append(s, 'U', v)
	}
	return s
}
