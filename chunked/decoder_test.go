// SPDX-License-Identifier: EPL-2.0

package chunked

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/formats"
	"github.com/ik5/audpcm/internal/audiotest"
)

func quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

// feed splits data into chunks of size bytes, starting at source offset
// start, and collects everything decoded.
func feed(t *testing.T, d *Decoder, data []byte, start int64, size int) ([]float32, []audio.Chunk) {
	t.Helper()

	var samples []float32
	var chunks []audio.Chunk
	for off := 0; off < len(data); off += size {
		end := min(off+size, len(data))
		res := d.ProcessChunk(audio.FileChunk{
			Data:     data[off:end],
			Position: start + int64(off),
			IsLast:   end == len(data),
		})
		if res.Err != nil {
			t.Fatalf("ProcessChunk at %d: %v", off, res.Err)
		}
		for _, c := range res.Chunks {
			samples = append(samples, c.Samples...)
			chunks = append(chunks, c)
		}
	}
	return samples, chunks
}

func checkContiguous(t *testing.T, chunks []audio.Chunk, channels int, first int64) {
	t.Helper()

	next := first
	for i, c := range chunks {
		if c.StartSample != next {
			t.Fatalf("chunk %d starts at %d, want %d", i, c.StartSample, next)
		}
		next += int64(len(c.Samples) / channels)
		if c.IsLast != (i == len(chunks)-1) {
			t.Errorf("chunk %d IsLast = %v", i, c.IsLast)
		}
	}
}

func TestProcessChunk_SplitMatchesWhole(t *testing.T) {
	t.Parallel()

	ogg, err := os.ReadFile(filepath.Join("..", "formats", "vorbis", "testdata", "mono44k.ogg"))
	if err != nil {
		t.Fatal(err)
	}

	streams := []struct {
		name   string
		format audio.Format
		data   []byte
		sizes  []int
	}{
		{name: "wav stereo", format: audio.WAV, data: audiotest.WAV16(8000, 2, audiotest.Ramp(3000, -1500))},
		{name: "wav mono odd chunk", format: audio.WAV, data: audiotest.WAV16(8000, 1, audiotest.Ramp(777, 3), audiotest.RIFFChunk("LIST", []byte("info")))},
		{name: "flac", format: audio.FLAC, data: audiotest.FLAC(2, []int16{8192, -16384}, []int16{0, 16384})},
		{name: "detected flac", format: audio.Unknown, data: audiotest.FLAC(1, []int16{-8192})},
		{name: "mp3 with id3", format: audio.MP3, data: append(audiotest.ID3v2(100), audiotest.MP3(12)...), sizes: []int{1, 7, 500, 4096}},
		{name: "ogg vorbis", format: audio.Ogg, data: ogg, sizes: []int{1, 7, 500, 4096}},
	}

	for _, s := range streams {
		whole, _, err := formats.Decode(s.data, s.format, nil)
		if err != nil {
			t.Fatalf("%s: whole decode: %v", s.name, err)
		}

		sizes := s.sizes
		if sizes == nil {
			sizes = []int{1, 3, 7, 64, 1000}
		}
		for _, size := range append(sizes, len(s.data)) {
			t.Run(s.name, func(t *testing.T) {
				t.Parallel()

				d, err := New(s.format, bytes.NewReader(s.data), quiet())
				if err != nil {
					t.Fatalf("New: %v", err)
				}
				defer d.Close()

				got, chunks := feed(t, d, s.data, 0, size)
				if !slices.Equal(got, whole.Samples) {
					t.Fatalf("chunk size %d: %d samples differ from whole decode (%d)", size, len(got), len(whole.Samples))
				}
				checkContiguous(t, chunks, d.Channels(), 0)

				if d.State() != Finished {
					t.Errorf("State = %v, want %v", d.State(), Finished)
				}
				if d.CarryOver() != 0 {
					t.Errorf("CarryOver = %d after the last chunk", d.CarryOver())
				}
				if d.Position() != int64(whole.Frames()) {
					t.Errorf("Position = %d, want %d", d.Position(), whole.Frames())
				}
			})
		}
	}
}

func TestProcessChunk_CarryOver(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV16(8000, 2, audiotest.Ramp(8, 0))
	d, err := New(audio.WAV, bytes.NewReader(data), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// header plus one frame and half of the next
	cut := int(d.Info().DataOffset) + 6
	res := d.ProcessChunk(audio.FileChunk{Data: data[:cut]})
	if res.Status != audio.StatusSuccess || len(res.Chunks) != 1 || len(res.Chunks[0].Samples) != 2 {
		t.Fatalf("first chunk = %+v", res)
	}
	if d.CarryOver() != 2 {
		t.Fatalf("CarryOver = %d, want 2", d.CarryOver())
	}
	if d.State() != Decoding {
		t.Errorf("State = %v", d.State())
	}

	res = d.ProcessChunk(audio.FileChunk{Data: data[cut:], Position: int64(cut), IsLast: true})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	c := res.Chunks[0]
	if c.StartSample != 1 || !c.IsLast || len(c.Samples) != 6 {
		t.Errorf("second chunk = %+v", c)
	}
	if want := float32(2) / 32768; c.Samples[0] != want {
		t.Errorf("first carried sample = %v, want %v", c.Samples[0], want)
	}
}

func TestProcessChunk_Empty(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV16(8000, 1, audiotest.Ramp(4, 0))
	d, err := New(audio.WAV, bytes.NewReader(data), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	res := d.ProcessChunk(audio.FileChunk{Data: data[:10]})
	if res.Status != audio.StatusEmpty || len(res.Chunks) != 0 || res.Err != nil {
		t.Errorf("header-only chunk = %+v", res)
	}

	// the last chunk is reported even when it holds no samples
	res = d.ProcessChunk(audio.FileChunk{Data: data[10 : len(data)-8], Position: 10})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	res = d.ProcessChunk(audio.FileChunk{Position: int64(len(data) - 8), Data: data[len(data)-8:], IsLast: true})
	if res.Status != audio.StatusSuccess || len(res.Chunks) != 1 || !res.Chunks[0].IsLast {
		t.Errorf("last chunk = %+v", res)
	}
	res = d.ProcessChunk(audio.FileChunk{Position: int64(len(data)), IsLast: true})
	if len(res.Chunks) != 1 || len(res.Chunks[0].Samples) != 0 || !res.Chunks[0].IsLast {
		t.Errorf("empty last chunk = %+v", res)
	}
}

func TestProcessChunk_Resync(t *testing.T) {
	t.Parallel()

	fake := &fakeUnits{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	data := []byte("FAKEU\x0a??X\x00U\x14zU\x1e")
	d, err := New(fakeFormat, bytes.NewReader(data), WithRegistry(fakeRegistry(fake)), WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	got, chunks := feed(t, d, data, 0, 3)
	if want := []float32{0.1, 0.2, 0.3}; !slices.Equal(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}
	checkContiguous(t, chunks, 1, 0)

	out := logs.String()
	for _, want := range []string{"id=" + d.ID().String(), "format=ogg", "resynchronized"} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
}

func TestProcessChunk_Fatal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mode    fakeMode
		data    []byte
		wantErr error
	}{
		{name: "carry-over overflow", mode: fakeStuck, data: []byte("FAKEUUU"), wantErr: audio.ErrDesynchronized},
		{name: "no progress", mode: fakeIdle, data: []byte("FAKEU\x01"), wantErr: ErrNoProgress},
		{name: "fatal unit", data: []byte("FAKEU\x01!"), wantErr: audio.ErrUnsupportedCodec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeUnits{mode: tt.mode}
			d, err := New(fakeFormat, bytes.NewReader(tt.data), WithRegistry(fakeRegistry(fake)), quiet())
			if err != nil {
				t.Fatal(err)
			}

			res := d.ProcessChunk(audio.FileChunk{Data: tt.data})
			if res.Status != audio.StatusError || len(res.Chunks) != 0 || !errors.Is(res.Err, tt.wantErr) {
				t.Fatalf("result = %+v, want error %v", res, tt.wantErr)
			}
			if d.State() != Error || !errors.Is(d.Err(), tt.wantErr) {
				t.Errorf("State = %v, Err = %v", d.State(), d.Err())
			}

			// terminal until closed
			res = d.ProcessChunk(audio.FileChunk{Data: []byte("U\x01"), Position: int64(len(tt.data))})
			if !errors.Is(res.Err, tt.wantErr) {
				t.Errorf("after failure: %+v", res)
			}
			if err := d.SeekTime(0); !errors.Is(err, tt.wantErr) {
				t.Errorf("Seek after failure = %v", err)
			}
			if err := d.Close(); err != nil {
				t.Errorf("Close = %v", err)
			}
		})
	}
}

func TestProcessChunk_Discontinuity(t *testing.T) {
	t.Parallel()

	fake := &fakeUnits{}
	data := fakeStream(1, 2, 3)
	d, err := New(fakeFormat, bytes.NewReader(data), WithRegistry(fakeRegistry(fake)), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// "FAKEU" leaves one byte of carry-over
	d.ProcessChunk(audio.FileChunk{Data: data[:5]})
	if d.CarryOver() != 1 {
		t.Fatalf("CarryOver = %d, want 1", d.CarryOver())
	}

	// jump over the second unit
	res := d.ProcessChunk(audio.FileChunk{Data: data[8:], Position: 8, IsLast: true})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if got := res.Chunks[0].Samples; !slices.Equal(got, []float32{0.03}) {
		t.Errorf("samples = %v, want [0.03]", got)
	}
	if fake.last.flushes != 1 {
		t.Errorf("flushes = %d, want 1", fake.last.flushes)
	}
}

func TestProcessChunk_InvalidInput(t *testing.T) {
	t.Parallel()

	data := fakeStream(1)
	d, err := New(fakeFormat, bytes.NewReader(data), WithRegistry(fakeRegistry(&fakeUnits{})), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	res := d.ProcessChunk(audio.FileChunk{Data: data, Position: -1})
	if !errors.Is(res.Err, audio.ErrInvalidInput) {
		t.Errorf("negative position: %+v", res)
	}
	if d.State() != Initialized {
		t.Errorf("State = %v, want %v", d.State(), Initialized)
	}

	var zero Decoder
	if res := zero.ProcessChunk(audio.FileChunk{Data: data}); !errors.Is(res.Err, audio.ErrInvalidInput) {
		t.Errorf("uninitialized: %+v", res)
	}
}

func TestSeekTime(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV16(8000, 2, audiotest.Ramp(8000, -4000))
	whole, _, err := formats.Decode(data, audio.WAV, nil)
	if err != nil {
		t.Fatal(err)
	}

	d, err := New(audio.WAV, bytes.NewReader(data), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// leave a partial frame behind
	cut := int(d.Info().DataOffset) + 10
	d.ProcessChunk(audio.FileChunk{Data: data[:cut]})
	if d.CarryOver() == 0 {
		t.Fatal("expected carry-over before seeking")
	}

	if err := d.SeekTime(100); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if d.CarryOver() != 0 {
		t.Errorf("CarryOver = %d after seek", d.CarryOver())
	}
	if d.State() != Decoding {
		t.Errorf("State = %v", d.State())
	}
	if d.Position() != 800 {
		t.Errorf("Position = %d, want 800", d.Position())
	}
	wantPos := d.Info().DataOffset + 800*4
	if d.SourcePosition() != wantPos {
		t.Errorf("SourcePosition = %d, want %d", d.SourcePosition(), wantPos)
	}

	var got []float32
	var chunks []audio.Chunk
	for {
		fc, err := d.NextChunk(333)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		res := d.ProcessChunk(fc)
		if res.Err != nil {
			t.Fatal(res.Err)
		}
		for _, c := range res.Chunks {
			got = append(got, c.Samples...)
			chunks = append(chunks, c)
		}
	}

	if !slices.Equal(got, whole.Samples[800*2:]) {
		t.Errorf("decoded %d samples after seek, want the last %d of the whole decode", len(got), len(whole.Samples)-1600)
	}
	checkContiguous(t, chunks, 2, 800)
}

func TestSeekTime_Errors(t *testing.T) {
	t.Parallel()

	// no length and no bitrate: nothing to estimate from
	d, err := New(fakeFormat, bytes.NewReader(fakeStream(1, 2)), WithRegistry(fakeRegistry(&fakeUnits{})), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	if err := d.SeekTime(10); !errors.Is(err, audio.ErrSeekFailed) {
		t.Errorf("Seek = %v, want %v", err, audio.ErrSeekFailed)
	}
	if d.State() != Initialized {
		t.Errorf("State = %v after a failed estimate", d.State())
	}
	if err := d.SeekTime(-1); !errors.Is(err, audio.ErrSeekFailed) {
		t.Errorf("negative Seek = %v", err)
	}
}

func TestSeekTime_Proportional(t *testing.T) {
	t.Parallel()

	fake := &fakeUnits{total: 1000}
	data := fakeStream(make([]byte, 1000)...)
	d, err := New(fakeFormat, bytes.NewReader(data), WithRegistry(fakeRegistry(fake)), quiet())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	// 2000 data bytes for 1000 frames
	if err := d.SeekTime(400); err != nil {
		t.Fatal(err)
	}
	if d.Position() != 400 || d.SourcePosition() != 4+800 {
		t.Errorf("Position = %d, SourcePosition = %d", d.Position(), d.SourcePosition())
	}
	if fake.last.flushes != 1 {
		t.Errorf("flushes = %d, want 1", fake.last.flushes)
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	m4a := audiotest.M4A(16)
	lateMoov := append(audiotest.Ftyp("M4A "), audiotest.Box("mdat", make([]byte, 4096))...)
	lateMoov = append(lateMoov, audiotest.Box("moov", audiotest.AudioTrak("mp4a", 2, 44100, 44100, 441000))...)

	tests := []struct {
		name    string
		format  audio.Format
		data    []byte
		opts    []Option
		wantErr error
	}{
		{name: "empty", format: audio.WAV, data: nil, wantErr: audio.ErrInvalidInput},
		{name: "undetectable", format: audio.Unknown, data: []byte("plain text"), wantErr: audio.ErrUnknownFormat},
		{name: "aiff has no unit decoder", format: audio.AIFF, data: audiotest.AIFF(8000, 1, 16, []int32{1}), wantErr: audio.ErrUnsupportedCodec},
		{name: "wrong format", format: audio.FLAC, data: audiotest.WAV16(8000, 1, []int16{1}), wantErr: audio.ErrContainerInvalid},
		{name: "truncated wav header", format: audio.WAV, data: []byte("RIFF\x24\x00\x00\x00WAVEfmt "), wantErr: audio.ErrContainerInvalid},
		{name: "mp4 without aac decoder", format: audio.MP4, data: m4a, wantErr: audio.ErrBackendUnavailable},
		{name: "moov past header window", format: audio.MP4, data: lateMoov, opts: []Option{WithHeaderWindow(1024)}, wantErr: audio.ErrContainerInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d, err := New(tt.format, bytes.NewReader(tt.data), append(tt.opts, quiet())...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
			}
			if d != nil {
				t.Error("decoder returned with an error")
			}
		})
	}
}

func TestNew_HeaderWindowGrowth(t *testing.T) {
	t.Parallel()

	data := fakeStream(make([]byte, 60)...)

	fake := &fakeUnits{need: 40}
	d, err := New(fakeFormat, bytes.NewReader(data), WithRegistry(fakeRegistry(fake)), WithHeaderWindow(16), quiet())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.Close()
	if fake.tries != 3 {
		t.Errorf("tries = %d, want 3 (16, 32, 64 bytes)", fake.tries)
	}

	capped := func(o *Options) { o.MaxHeaderWindow = 32 }
	fake = &fakeUnits{need: 40}
	_, err = New(fakeFormat, bytes.NewReader(data), WithRegistry(fakeRegistry(fake)), WithHeaderWindow(16), capped, quiet())
	if !errors.Is(err, audio.ErrContainerInvalid) {
		t.Errorf("capped window: err = %v, want %v", err, audio.ErrContainerInvalid)
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	data := audiotest.WAV16(22050, 1, audiotest.Ramp(1000, 0))
	path := filepath.Join(t.TempDir(), "ramp.wav")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	d, err := Open(audio.Unknown, path, quiet())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if d.Format() != audio.WAV || d.TotalFrames() != 1000 || d.SourceSize() != int64(len(data)) {
		t.Errorf("Format = %v, TotalFrames = %d, SourceSize = %d", d.Format(), d.TotalFrames(), d.SourceSize())
	}

	var frames int64
	for {
		fc, err := d.NextChunk(256)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		res := d.ProcessChunk(fc)
		if res.Err != nil {
			t.Fatal(res.Err)
		}
		frames += res.Frames(1)
	}
	if frames != 1000 {
		t.Errorf("frames = %d, want 1000", frames)
	}

	if err := d.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if err := d.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if res := d.ProcessChunk(audio.FileChunk{Data: data}); !errors.Is(res.Err, ErrClosed) {
		t.Errorf("ProcessChunk after Close = %+v", res)
	}
	if _, err := d.NextChunk(16); !errors.Is(err, ErrClosed) {
		t.Errorf("NextChunk after Close = %v", err)
	}

	if _, err := Open(audio.WAV, filepath.Join(t.TempDir(), "missing.wav")); !errors.Is(err, audio.ErrInvalidInput) {
		t.Errorf("missing file: %v", err)
	}
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()

	fake := &fakeUnits{}
	d, err := New(fakeFormat, bytes.NewReader(fakeStream(1)), WithRegistry(fakeRegistry(fake)), quiet())
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		if err := d.Close(); err != nil {
			t.Fatalf("Close = %v", err)
		}
	}
	if fake.last.closes != 1 {
		t.Errorf("backend closed %d times, want 1", fake.last.closes)
	}

	var nilDecoder *Decoder
	if err := nilDecoder.Close(); err != nil {
		t.Errorf("nil Close = %v", err)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	for s, want := range map[State]string{
		Uninitialized: "uninitialized",
		Seeking:       "seeking",
		Error:         "error",
		State(42):     "unknown",
	} {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(s), got, want)
		}
	}
}

func BenchmarkProcessChunk(b *testing.B) {
	data := audiotest.WAV16(44100, 2, audiotest.Ramp(44100*2, 0))

	b.ReportAllocs()
	for b.Loop() {
		d, err := New(audio.WAV, bytes.NewReader(data), quiet())
		if err != nil {
			b.Fatal(err)
		}
		for off := 0; off < len(data); off += 4096 {
			end := min(off+4096, len(data))
			if res := d.ProcessChunk(audio.FileChunk{Data: data[off:end], Position: int64(off), IsLast: end == len(data)}); res.Err != nil {
				b.Fatal(res.Err)
			}
		}
		d.Close()
	}
}
