// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"
	"github.com/ik5/audpcm/audio"
)

// WAVE format tags.
const (
	FormatPCM        = 0x0001
	FormatFloat      = 0x0003
	FormatExtensible = 0xFFFE
)

// Header is the stream layout found before the data chunk.
type Header struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Format        uint16
	BlockAlign    int

	DataOffset int64
	DataSize   int64
}

// IsFloat reports IEEE float samples.
func (h Header) IsFloat() bool { return h.Format == FormatFloat }

func (h Header) TotalFrames() int64 {
	if h.BlockAlign == 0 {
		return 0
	}
	return h.DataSize / int64(h.BlockAlign)
}

func (h Header) StreamInfo() audio.StreamInfo {
	return audio.StreamInfo{
		SampleRate:    h.SampleRate,
		Channels:      h.Channels,
		BitsPerSample: h.BitsPerSample,
		TotalFrames:   h.TotalFrames(),
		DataOffset:    h.DataOffset,
		DataSize:      h.DataSize,
		BlockAlign:    h.BlockAlign,
		Bitrate:       h.SampleRate * h.BlockAlign * 8,
	}
}

// ParseHeader reads the header from the first bytes of a file of the given
// size. It returns audio.ErrNeedMoreData while b is too short to reach the
// data chunk.
func ParseHeader(b []byte, size int64) (Header, error) {
	short := int64(len(b)) < size

	if len(b) < 12 {
		if short {
			return Header{}, audio.ErrNeedMoreData
		}
		return Header{}, ErrNotWavFile
	}

	h, _, err := readHeader(bytes.NewReader(b), size)
	if err == ErrUnsupportedWavLayout && short {
		return Header{}, audio.ErrNeedMoreData
	}
	return h, err
}

// readHeader walks the RIFF chunks up to the start of the sample data and
// leaves rs positioned there. size bounds the data chunk, 0 means unknown.
func readHeader(rs io.ReadSeeker, size int64) (Header, *gowav.Decoder, error) {
	base, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}

	var magic [12]byte
	if _, err := io.ReadFull(rs, magic[:]); err != nil {
		return Header{}, nil, ErrNotWavFile
	}
	if !bytes.Equal(magic[:4], []byte("RIFF")) || !bytes.Equal(magic[8:], []byte("WAVE")) {
		return Header{}, nil, ErrNotWavFile
	}
	if _, err := rs.Seek(base, io.SeekStart); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}

	dec := gowav.NewDecoder(rs)
	if err := dec.FwdToPCM(); err != nil || dec.NumChans == 0 || dec.PCMChunk == nil {
		return Header{}, nil, ErrUnsupportedWavLayout
	}

	offset, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}

	// PCMSize includes the pad byte of an odd-sized chunk.
	dataSize := int64(dec.PCMSize)
	var raw [4]byte
	if _, err := rs.Seek(offset-4, io.SeekStart); err == nil {
		if _, err := io.ReadFull(rs, raw[:]); err == nil {
			dataSize = int64(binary.LittleEndian.Uint32(raw[:]))
		}
	}

	h := Header{
		SampleRate:    int(dec.SampleRate),
		Channels:      int(dec.NumChans),
		BitsPerSample: int(dec.BitDepth),
		Format:        dec.WavAudioFormat,
		DataOffset:    offset - base,
		DataSize:      dataSize,
	}

	switch h.Format {
	case FormatPCM, FormatExtensible:
		if h.BitsPerSample != 8 && h.BitsPerSample != 16 && h.BitsPerSample != 24 && h.BitsPerSample != 32 {
			return h, nil, fmt.Errorf("%w: %d-bit integer", ErrUnsupportedSampleFormat, h.BitsPerSample)
		}
	case FormatFloat:
		if h.BitsPerSample != 32 && h.BitsPerSample != 64 {
			return h, nil, fmt.Errorf("%w: %d-bit float", ErrUnsupportedSampleFormat, h.BitsPerSample)
		}
	default:
		return h, nil, fmt.Errorf("%w: format tag %#04x", ErrUnsupportedSampleFormat, h.Format)
	}
	if h.SampleRate <= 0 {
		return h, nil, fmt.Errorf("%w: sample rate %d", audio.ErrContainerInvalid, h.SampleRate)
	}

	h.BlockAlign = h.Channels * h.BitsPerSample / 8
	if size > 0 && h.DataOffset+h.DataSize > size {
		h.DataSize = size - h.DataOffset
	}

	return h, dec, nil
}
