// SPDX-License-Identifier: EPL-2.0

package audiotest

import "io"

// Source produces a fixed number of frames of one constant value. It
// satisfies audio.Source without reporting its length, so decoders have to
// size their output from other hints.
type Source struct {
	Rate  int
	Chans int
	// Frames is the total length; Value is written to every sample.
	Frames int
	Value  float32

	read int
}

// Silence returns frames of zeros.
func Silence(rate, channels, frames int) *Source {
	return &Source{Rate: rate, Chans: channels, Frames: frames}
}

func Constant(rate, channels, frames int, v float32) *Source {
	return &Source{Rate: rate, Chans: channels, Frames: frames, Value: v}
}

func (s *Source) SampleRate() int { return s.Rate }
func (s *Source) Channels() int   { return s.Chans }
func (s *Source) BufSize() int    { return 4096 * max(s.Chans, 1) }
func (s *Source) Close() error    { return nil }

// ReadSamples fills whole frames and returns io.EOF with the last ones.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.read >= s.Frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.Chans, s.Frames-s.read)
	for i := range dst[:n*s.Chans] {
		dst[i] = s.Value
	}
	s.read += n

	if s.read >= s.Frames {
		return n * s.Chans, io.EOF
	}
	return n * s.Chans, nil
}

// Counted is a Source that also reports its length through TotalFrames.
type Counted struct {
	*Source
}

func (c Counted) TotalFrames() int64 { return int64(c.Frames) }
