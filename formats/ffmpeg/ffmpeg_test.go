// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os/exec"
	"slices"
	"testing"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/internal/audiotest"
)

func TestParseProbe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		json    string
		want    Metadata
		wantErr error
	}{
		{
			name: "mp3 stream",
			json: `{"streams":[{"codec_type":"audio","codec_name":"mp3","sample_rate":"44100","channels":2,"duration":"1.500000","bit_rate":"128000"}]}`,
			want: Metadata{SampleRate: 44100, Channels: 2, Codec: "mp3", Duration: 1.5, Bitrate: 128000},
		},
		{
			name: "missing optional fields",
			json: `{"streams":[{"codec_type":"audio","codec_name":"opus","sample_rate":"48000","channels":1}]}`,
			want: Metadata{SampleRate: 48000, Channels: 1, Codec: "opus"},
		},
		{name: "no streams", json: `{"streams":[]}`, wantErr: audio.ErrNoAudioTrack},
		{name: "video stream", json: `{"streams":[{"codec_type":"video"}]}`, wantErr: audio.ErrNoAudioTrack},
		{name: "bad rate", json: `{"streams":[{"codec_type":"audio","sample_rate":"N/A","channels":2}]}`, wantErr: audio.ErrUnsupportedCodec},
		{name: "no channels", json: `{"streams":[{"codec_type":"audio","sample_rate":"8000","channels":0}]}`, wantErr: audio.ErrUnsupportedCodec},
		{name: "not json", json: `ffprobe: error`, wantErr: audio.ErrDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseProbe([]byte(tt.json))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseProbe: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMetadataTotalFrames(t *testing.T) {
	t.Parallel()

	m := Metadata{SampleRate: 8000, Duration: 2.5}
	if got := m.TotalFrames(); got != 20000 {
		t.Errorf("TotalFrames = %d, want 20000", got)
	}
}

func TestDecodeArgs(t *testing.T) {
	t.Parallel()

	args := decodeArgs(Metadata{SampleRate: 22050, Channels: 1})
	for _, pair := range [][2]string{{"-f", "f32le"}, {"-ar", "22050"}, {"-ac", "1"}, {"-i", "pipe:0"}} {
		i := slices.Index(args, pair[0])
		if i < 0 || i+1 >= len(args) || args[i+1] != pair[1] {
			t.Errorf("args %v lack %s %s", args, pair[0], pair[1])
		}
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("last arg = %q, want pipe:1", args[len(args)-1])
	}
	if probeArgs()[len(probeArgs())-1] != "pipe:0" {
		t.Error("probe must read stdin")
	}
}

func TestWrapRun(t *testing.T) {
	t.Parallel()

	notFound := &exec.Error{Name: "ffmpeg", Err: exec.ErrNotFound}
	if err := wrapRun("ffmpeg", notFound); !errors.Is(err, audio.ErrBackendUnavailable) {
		t.Errorf("missing tool: %v", err)
	}
	if err := wrapRun("ffmpeg", errors.New("boom")); audio.Classify(err) != audio.ErrDecodeFailed {
		t.Errorf("failed run: %v", err)
	}
}

func TestDecoderMissingTools(t *testing.T) {
	t.Parallel()

	d := Decoder{Config: Config{
		FFmpegPath:  "audpcm-no-such-ffmpeg",
		FFprobePath: "audpcm-no-such-ffprobe",
	}}
	_, err := d.Decode(bytes.NewReader([]byte("RIFF")))
	if !errors.Is(err, audio.ErrBackendUnavailable) {
		t.Fatalf("err = %v, want %v", err, audio.ErrBackendUnavailable)
	}
}

func TestDecoderEmptyInput(t *testing.T) {
	t.Parallel()

	d := Decoder{Config: Config{FFmpegPath: "audpcm-no-such-ffmpeg", FFprobePath: "audpcm-no-such-ffprobe"}}
	if _, err := d.Decode(bytes.NewReader(nil)); !errors.Is(err, audio.ErrInvalidInput) {
		t.Fatalf("err = %v, want %v", err, audio.ErrInvalidInput)
	}
}

func TestF32LE(t *testing.T) {
	t.Parallel()

	in := []float32{0.5, -0.25, 2, -3}
	raw := make([]byte, 0, len(in)*4)
	for _, v := range in {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
	}

	dst := make([]float32, len(in))
	n := f32le(dst, raw)
	if want := []float32{0.5, -0.25, 1, -1}; n != 4 || !slices.Equal(dst, want) {
		t.Errorf("f32le = %d %v, want 4 %v", n, dst, want)
	}
}

func TestDecodeWAV(t *testing.T) {
	if !Available() {
		t.Skip("ffmpeg not installed")
	}
	t.Parallel()

	pcm := []int16{16384, -16384, 8192, -8192}
	src, err := Decoder{}.DecodeContext(context.Background(), bytes.NewReader(audiotest.WAV16(8000, 2, pcm)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	defer src.Close()

	if src.SampleRate() != 8000 || src.Channels() != 2 {
		t.Fatalf("format = %d Hz %d ch", src.SampleRate(), src.Channels())
	}

	var got []float32
	buf := make([]float32, 3) // one whole frame per read
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples: %v", err)
		}
	}

	want := []float32{0.5, -0.5, 0.25, -0.25}
	if !slices.Equal(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}
}
