// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/internal/audiotest"
)

// ftypMdhd is a 32-byte ftyp (major brand isom) followed by a 32-byte
// version 0 mdhd with timescale 44100 and duration 90000.
func ftypMdhd() []byte {
	ftyp := audiotest.Box("ftyp", []byte("isom\x00\x00\x02\x00isomiso2mp41avc1"))
	return append(ftyp, audiotest.Mdhd(0, 44100, 90000)...)
}

func TestParseBoxHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		want    Box
		wantErr error
	}{
		{
			name: "32-bit size",
			data: audiotest.Box("free", make([]byte, 8)),
			want: Box{Size: 16, Type: ParseFourCC("free"), HeaderSize: 8},
		},
		{
			name: "64-bit size",
			data: audiotest.Box64("mdat", make([]byte, 4)),
			want: Box{Size: 20, Type: TypeMdat, HeaderSize: 16},
		},
		{
			name:    "too short",
			data:    []byte{0, 0, 0, 8, 'f'},
			wantErr: audio.ErrInvalidInput,
		},
		{
			name:    "64-bit size truncated",
			data:    []byte{0, 0, 0, 1, 'm', 'd', 'a', 't', 0, 0},
			wantErr: audio.ErrInvalidInput,
		},
		{
			name:    "size zero",
			data:    []byte{0, 0, 0, 0, 'm', 'd', 'a', 't'},
			wantErr: audio.ErrContainerInvalid,
		},
		{
			name:    "size smaller than header",
			data:    []byte{0, 0, 0, 4, 'f', 'r', 'e', 'e'},
			wantErr: audio.ErrContainerInvalid,
		},
		{
			name:    "size beyond buffer",
			data:    []byte{0, 0, 0, 64, 'f', 'r', 'e', 'e', 0, 0},
			wantErr: audio.ErrContainerInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseBoxHeader(tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseBoxHeader() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBoxHeader() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseBoxHeader() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBox_HeaderRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := [][]byte{
		audiotest.Box("ftyp", []byte("M4A \x00\x00\x00\x00")),
		audiotest.Box64("mdat", make([]byte, 32)),
		audiotest.Mdhd(1, 48000, 1<<40),
		audiotest.Box("moov"),
	}

	for _, in := range inputs {
		box, err := ParseBoxHeader(in)
		if err != nil {
			t.Fatalf("ParseBoxHeader(%q) error = %v", in[4:8], err)
		}
		got := box.AppendHeader(nil)
		if !bytes.Equal(got, in[:box.HeaderSize]) {
			t.Errorf("AppendHeader() = %x, want %x", got, in[:box.HeaderSize])
		}
	}
}

func TestFindBox(t *testing.T) {
	t.Parallel()

	data := ftypMdhd()

	s, ok := FindBox(data, TypeFtyp)
	if !ok || s.Offset != 0 || s.Size != 32 {
		t.Errorf("FindBox(ftyp) = %+v, %v; want offset 0 size 32", s, ok)
	}

	s, ok = FindBox(data, TypeMdhd)
	if !ok || s.Offset != 32 || s.Size != 32 {
		t.Errorf("FindBox(mdhd) = %+v, %v; want offset 32 size 32", s, ok)
	}

	if _, ok := FindBox(data, TypeMoov); ok {
		t.Error("FindBox(moov) found a box that is not there")
	}
}

func TestFindBox_StopsOnMalformed(t *testing.T) {
	t.Parallel()

	data := audiotest.Box("free", make([]byte, 4))
	data = append(data, 0, 0, 0, 0, 'm', 'o', 'o', 'v') // size 0
	data = append(data, audiotest.Box("moov")...)

	if _, ok := FindBox(data, TypeMoov); ok {
		t.Error("FindBox() walked past a malformed box")
	}

	truncated := audiotest.Box("moov", make([]byte, 16))[:20]
	if _, ok := FindBox(truncated, TypeMoov); ok {
		t.Error("FindBox() returned a box extending past the buffer")
	}
}

func TestBoxes(t *testing.T) {
	t.Parallel()

	data := ftypMdhd()
	data = append(data, 1, 2, 3) // trailing bytes, fewer than 8

	var types []string
	for s := range Boxes(data) {
		types = append(types, s.Type.String())
	}
	if len(types) != 2 || types[0] != "ftyp" || types[1] != "mdhd" {
		t.Errorf("Boxes() = %v, want [ftyp mdhd]", types)
	}
}

func TestSpan_Payload(t *testing.T) {
	t.Parallel()

	data := append(audiotest.Box("free"), audiotest.Box64("skip", []byte{1, 2, 3})...)
	s, ok := FindBox(data, ParseFourCC("skip"))
	if !ok {
		t.Fatal("skip box not found")
	}
	if got := s.Payload(data); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Payload() = %v, want [1 2 3]", got)
	}
	if got := len(s.Bytes(data)); got != 19 {
		t.Errorf("len(Bytes()) = %d, want 19", got)
	}
}

func TestFourCC_String(t *testing.T) {
	t.Parallel()

	if TypeFtyp.String() != "ftyp" || CodecMP4A.String() != "mp4a" {
		t.Errorf("unexpected FourCC strings %q %q", TypeFtyp, CodecMP4A)
	}
	if ParseFourCC("M4A ") != FourCC(0x4D344120) {
		t.Errorf("ParseFourCC(M4A ) = %#x", uint32(ParseFourCC("M4A ")))
	}
}

func BenchmarkFindBox(b *testing.B) {
	data := audiotest.M4A(4096)

	b.ReportAllocs()
	for b.Loop() {
		FindBox(data, TypeMdat)
	}
}
