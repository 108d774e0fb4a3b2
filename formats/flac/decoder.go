// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/utils"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
)

// flacStream is an interface for flac.Stream to allow testing
type flacStream interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type source struct {
	stream     flacStream
	sampleRate int
	channels   int
	bitDepth   int
	total      int64

	pending []float32
	scratch []float32
}

func (s *source) SampleRate() int    { return s.sampleRate }
func (s *source) Channels() int      { return s.channels }
func (s *source) Close() error       { return s.stream.Close() }
func (s *source) BufSize() int       { return 4096 * s.channels }
func (s *source) TotalFrames() int64 { return s.total }

func (s *source) ReadSamples(dst []float32) (int, error) {
	n := 0
	for n < len(dst) {
		if len(s.pending) == 0 {
			f, err := s.stream.ParseNext()
			if err == io.EOF {
				if n == 0 {
					return 0, io.EOF
				}
				return n, nil
			}
			if err != nil {
				return n, fmt.Errorf("%w: %w", audio.ErrDecodeFailed, err)
			}
			s.scratch = interleave(s.scratch[:0], f, s.bitDepth)
			s.pending = s.scratch
		}

		c := copy(dst[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

// interleave appends the frame's samples as interleaved floats. bitDepth
// is used when the frame header defers to STREAMINFO.
func interleave(dst []float32, f *frame.Frame, bitDepth int) []float32 {
	bps := int(f.BitsPerSample)
	if bps == 0 {
		bps = bitDepth
	}

	for i := range int(f.BlockSize) {
		for _, sub := range f.Subframes {
			dst = append(dst, utils.IntToFloat32(sub.Samples[i], bps))
		}
	}
	return dst
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrContainerInvalid, err)
	}

	info := stream.Info
	if info == nil || info.NChannels == 0 || info.SampleRate == 0 {
		stream.Close()
		return nil, ErrNoStreamInfo
	}

	return &source{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   int(info.BitsPerSample),
		total:      int64(info.NSamples),
	}, nil
}
