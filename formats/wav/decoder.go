// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/utils"
)

const defaultFrames = 4096

type source struct {
	r   io.Reader
	hdr Header
	raw []byte
}

func (s *source) SampleRate() int    { return s.hdr.SampleRate }
func (s *source) Channels() int      { return s.hdr.Channels }
func (s *source) Close() error       { return nil }
func (s *source) BufSize() int       { return defaultFrames * s.hdr.Channels }
func (s *source) TotalFrames() int64 { return s.hdr.TotalFrames() }

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.hdr.Channels
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	need := frames * s.hdr.BlockAlign
	if cap(s.raw) < need {
		s.raw = make([]byte, need)
	}
	s.raw = s.raw[:need]

	n, err := io.ReadFull(s.r, s.raw)
	n -= n % s.hdr.BlockAlign
	if n == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return 0, fmt.Errorf("%w: %w", audio.ErrDecodeFailed, err)
	}

	return utils.DecodePCM(dst, s.raw[:n], s.hdr.BitsPerSample, s.hdr.IsFloat())
}

// Decoder decodes whole WAV files with 8/16/24/32-bit integer or 32/64-bit
// float samples.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		// go-audio needs to seek while walking chunks
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading wav data: %w", audio.ErrInvalidInput, err)
		}
		rs = bytes.NewReader(data)
	}

	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}

	hdr, dec, err := readHeader(rs, end-start)
	if err != nil {
		return nil, err
	}

	return &source{
		r:   io.LimitReader(dec.PCMChunk.R, hdr.DataSize),
		hdr: hdr,
	}, nil
}
