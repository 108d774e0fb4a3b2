// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
)

type unitSource struct {
	dec     UnitDecoder
	info    StreamInfo
	data    []byte
	pos     int
	pending []float32
}

// NewUnitSource reads a whole in-memory source through dec, which must
// have been created from the same bytes. Recoverable unit errors are
// skipped the way the chunked decoder skips them.
func NewUnitSource(dec UnitDecoder, data []byte) Source {
	return &unitSource{dec: dec, info: dec.Info(), data: data}
}

func (s *unitSource) SampleRate() int    { return s.info.SampleRate }
func (s *unitSource) Channels() int      { return s.info.Channels }
func (s *unitSource) BufSize() int       { return 4096 * max(s.info.Channels, 1) }
func (s *unitSource) TotalFrames() int64 { return s.info.TotalFrames }
func (s *unitSource) Close() error       { return s.dec.Close() }

func (s *unitSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	n := 0
	for n < len(dst) {
		if len(s.pending) == 0 {
			if s.pos >= len(s.data) {
				break
			}

			u, err := s.dec.DecodeUnit(s.data[s.pos:], int64(s.pos), true)
			switch {
			case err == nil:
			case errors.Is(err, ErrNeedMoreData):
				s.pos = len(s.data)
				continue
			case Classify(err).Fatal():
				return n, err
			case u.Consumed == 0:
				u.Consumed = 1
			}
			s.pos += u.Consumed
			if err != nil {
				continue
			}
			s.pending = u.Samples
		}

		c := copy(dst[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}

	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
