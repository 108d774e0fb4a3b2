// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"

	"github.com/ik5/audpcm/audio"
)

// Decoder runs the external tools. The zero value uses DefaultConfig and
// slog.Default.
type Decoder struct {
	Config Config
	Logger *slog.Logger
}

func (d Decoder) config() Config {
	if d.Config == (Config{}) {
		return DefaultConfig()
	}
	c := d.Config
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	return c
}

func (d Decoder) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	return d.DecodeContext(context.Background(), r)
}

// DecodeContext probes the input and starts ffmpeg. The returned source
// must be closed; closing it early stops the process.
func (d Decoder) DecodeContext(ctx context.Context, r io.Reader) (audio.Source, error) {
	cfg := d.config()
	def := DefaultConfig()
	if cfg.FFmpegPath == def.FFmpegPath && cfg.FFprobePath == def.FFprobePath {
		if err := lookup(); err != nil {
			return nil, err
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", audio.ErrInvalidInput)
	}

	cancel := context.CancelFunc(func() {})
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	}

	meta, err := cfg.Probe(ctx, data)
	if err != nil {
		cancel()
		return nil, err
	}

	cmd := exec.CommandContext(ctx, cfg.FFmpegPath, decodeArgs(meta)...)
	cmd.Stdin = bytes.NewReader(data)
	s := &source{meta: meta, cmd: cmd, cancel: cancel}
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("ffmpeg stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, wrapRun("ffmpeg", err)
	}
	s.r = bufio.NewReaderSize(stdout, 64*1024)

	d.logger().Debug("ffmpeg decode started",
		slog.String("codec", meta.Codec),
		slog.Int("sample_rate", meta.SampleRate),
		slog.Int("channels", meta.Channels),
		slog.Float64("duration", meta.Duration),
	)

	return s, nil
}

type source struct {
	meta   Metadata
	cmd    *exec.Cmd
	cancel context.CancelFunc
	r      *bufio.Reader
	stderr bytes.Buffer
	raw    []byte
	done   bool
	err    error
}

func (s *source) SampleRate() int    { return s.meta.SampleRate }
func (s *source) Channels() int      { return s.meta.Channels }
func (s *source) BufSize() int       { return 4096 * s.meta.Channels }
func (s *source) TotalFrames() int64 { return s.meta.TotalFrames() }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, s.endErr()
	}

	frames := len(dst) / s.meta.Channels
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}
	want := frames * s.meta.Channels * 4
	if cap(s.raw) < want {
		s.raw = make([]byte, want)
	}
	raw := s.raw[:want]

	n, err := io.ReadFull(s.r, raw)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("%w: reading ffmpeg output: %w", audio.ErrDecodeFailed, err)
	}

	// drop a torn trailing frame
	n -= n % (s.meta.Channels * 4)
	out := f32le(dst, raw[:n])

	if err != nil {
		s.finish()
		if out == 0 {
			return 0, s.endErr()
		}
	}
	return out, nil
}

func (s *source) endErr() error {
	if s.err != nil {
		return s.err
	}
	return io.EOF
}

func (s *source) finish() {
	if s.done {
		return
	}
	s.done = true
	if err := s.cmd.Wait(); err != nil {
		s.err = fmt.Errorf("%w: ffmpeg: %w, stderr: %s", audio.ErrDecodeFailed, err, bytes.TrimSpace(s.stderr.Bytes()))
	}
	s.cancel()
}

func (s *source) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	_ = s.cmd.Wait()
	s.cancel()
	return nil
}

// f32le converts little-endian float32 samples, clamping them to [-1, 1].
func f32le(dst []float32, raw []byte) int {
	n := len(raw) / 4
	for i := range n {
		v := math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		dst[i] = min(max(v, -1), 1)
	}
	return n
}
