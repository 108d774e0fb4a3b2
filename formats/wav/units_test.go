// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"errors"
	"testing"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/internal/audiotest"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	file := audiotest.WAV16(8000, 2, audiotest.Ramp(20, 0), audiotest.RIFFChunk("fact", []byte{1, 0, 0, 0}))
	size := int64(len(file))

	h, err := ParseHeader(file, size)
	if err != nil {
		t.Fatalf("ParseHeader() error = %v", err)
	}
	if h.DataOffset != 56 || h.DataSize != 40 || h.BlockAlign != 4 {
		t.Errorf("header = %+v", h)
	}
	if h.TotalFrames() != 10 {
		t.Errorf("TotalFrames() = %d, want 10", h.TotalFrames())
	}

	info := h.StreamInfo()
	if info.Bitrate != 8000*4*8 || info.DataOffset != 56 {
		t.Errorf("StreamInfo() = %+v", info)
	}

	// Cut inside the fact chunk and inside the RIFF header.
	for _, n := range []int{8, 40, 50} {
		if _, err := ParseHeader(file[:n], size); !errors.Is(err, audio.ErrNeedMoreData) {
			t.Errorf("ParseHeader(%d bytes) error = %v, want ErrNeedMoreData", n, err)
		}
	}

	// The same bytes as a complete file are simply invalid.
	if _, err := ParseHeader(file[:40], 40); !errors.Is(err, ErrUnsupportedWavLayout) {
		t.Errorf("complete short file: err = %v", err)
	}
	if _, err := ParseHeader([]byte("RIFF"), 4); !errors.Is(err, ErrNotWavFile) {
		t.Errorf("tiny file: err = %v", err)
	}
}

func TestUnitDecoder_Sequence(t *testing.T) {
	t.Parallel()

	file := audiotest.WAV16(8000, 2, audiotest.Ramp(20, 1))
	size := int64(len(file))

	dec, err := Units{Frames: 4}.NewUnitDecoder(file[:44], size)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	if dec.MaxUnitSize() != 16 {
		t.Errorf("MaxUnitSize() = %d, want 16", dec.MaxUnitSize())
	}

	var (
		pos     int64
		samples []float32
	)
	for pos < size {
		u, err := dec.DecodeUnit(file[pos:], pos, true)
		if err != nil {
			t.Fatalf("DecodeUnit(%d) error = %v", pos, err)
		}
		if u.Consumed == 0 {
			t.Fatalf("no progress at %d", pos)
		}
		samples = append(samples, u.Samples...)
		pos += int64(u.Consumed)
	}

	if len(samples) != 20 {
		t.Fatalf("got %d samples, want 20", len(samples))
	}
	for i, v := range samples {
		if want := float32(i+1) / 32768; v != want {
			t.Errorf("sample %d = %v, want %v", i, v, want)
		}
	}
}

func TestUnitDecoder_Edges(t *testing.T) {
	t.Parallel()

	// 3 stereo frames followed by a trailing LIST chunk.
	file := audiotest.WAV16(8000, 2, audiotest.Ramp(6, 0))
	file = append(file, audiotest.RIFFChunk("LIST", []byte("INFO"))...)
	size := int64(len(file))

	dec, err := Units{}.NewUnitDecoder(file, size)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		buf      []byte
		pos      int64
		final    bool
		consumed int
		samples  int
		err      error
	}{
		{"empty", nil, 44, false, 0, 0, audio.ErrNeedMoreData},
		{"inside header", file[10:50], 10, false, 34, 0, nil},
		{"partial frame", file[44:46], 44, false, 0, 0, audio.ErrNeedMoreData},
		{"partial frame at end of source", file[44:46], 44, true, 2, 0, nil},
		{"misaligned", file[46:56], 46, false, 2, 0, nil},
		{"stops at data end", file[44:], 44, false, 12, 6, nil},
		{"last frame", file[52:58], 52, false, 4, 2, nil},
		{"trailer", file[56:], 56, false, len(file) - 56, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := dec.DecodeUnit(tt.buf, tt.pos, tt.final)
			if !errors.Is(err, tt.err) {
				t.Fatalf("err = %v, want %v", err, tt.err)
			}
			if u.Consumed != tt.consumed || len(u.Samples) != tt.samples {
				t.Errorf("consumed=%d samples=%d, want %d and %d", u.Consumed, len(u.Samples), tt.consumed, tt.samples)
			}
		})
	}
}

func TestUnitDecoder_PartialFrameBeforeTrailer(t *testing.T) {
	t.Parallel()

	// Data chunk of 3 bytes for a 2-byte block.
	file := audiotest.WAV(8000, 1, 16, FormatPCM, []byte{0, 0x40, 7})
	file = append(file, audiotest.RIFFChunk("LIST", []byte("INFO"))...)

	dec, err := Units{}.NewUnitDecoder(file, int64(len(file)))
	if err != nil {
		t.Fatal(err)
	}

	// The dangling byte cannot be completed by later bytes, which belong
	// to the pad and the trailer.
	u, err := dec.DecodeUnit(file[46:], 46, false)
	if err != nil || u.Consumed != 1 || len(u.Samples) != 0 {
		t.Errorf("DecodeUnit() = %+v, %v", u, err)
	}
}
