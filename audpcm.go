// SPDX-License-Identifier: EPL-2.0

package audpcm

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/chunked"
	"github.com/ik5/audpcm/formats"
	"github.com/ik5/audpcm/formats/ffmpeg"
)

// Backend selects who turns encoded bytes into PCM.
type Backend int

const (
	// BackendNative uses the pure Go decoders of the registry.
	BackendNative Backend = iota
	// BackendFFmpeg pipes the input through the ffmpeg binary.
	BackendFFmpeg
)

func (b Backend) String() string {
	switch b {
	case BackendNative:
		return "native"
	case BackendFFmpeg:
		return "ffmpeg"
	}
	return "unknown"
}

type decodeOptions struct {
	backend    Backend
	registry   *audio.Registry
	maxSamples int
	ffmpeg     ffmpeg.Config
	logger     *slog.Logger
}

// DecodeOption configures Decode and DecodeFile.
type DecodeOption func(*decodeOptions)

// WithBackend picks the decode backend. The default is BackendNative.
func WithBackend(b Backend) DecodeOption {
	return func(o *decodeOptions) { o.backend = b }
}

// WithRegistry replaces the default format registry.
func WithRegistry(r *audio.Registry) DecodeOption {
	return func(o *decodeOptions) { o.registry = r }
}

// WithMaxSamples caps the decoded output; a larger result fails with
// audio.ErrOutOfMemory. Zero means no cap.
func WithMaxSamples(n int) DecodeOption {
	return func(o *decodeOptions) { o.maxSamples = n }
}

// WithFFmpeg sets the tool paths and timeout used by BackendFFmpeg.
func WithFFmpeg(cfg ffmpeg.Config) DecodeOption {
	return func(o *decodeOptions) { o.ffmpeg = cfg }
}

func WithLogger(l *slog.Logger) DecodeOption {
	return func(o *decodeOptions) { o.logger = l }
}

func newDecodeOptions(opts []DecodeOption) decodeOptions {
	o := decodeOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Detect identifies the format from the leading bytes of a file.
func Detect(data []byte) audio.Format {
	return formats.Detect(data)
}

// Decode decodes a whole in-memory file. Pass audio.Unknown to detect the
// format from data.
func Decode(data []byte, format audio.Format, opts ...DecodeOption) (*audio.Buffer, error) {
	return DecodeContext(context.Background(), data, format, opts...)
}

// DecodeContext is Decode with a context that bounds the ffmpeg backend.
// The native backend only checks ctx before starting.
func DecodeContext(ctx context.Context, data []byte, format audio.Format, opts ...DecodeOption) (*audio.Buffer, error) {
	o := newDecodeOptions(opts)

	buf, st, err := decode(ctx, data, format, o)
	if err != nil {
		return nil, record(err)
	}

	o.logger.Debug("decoded",
		"format", format,
		"backend", o.backend,
		"bytes", st.InputBytes,
		"samples", st.Samples,
		"initial_capacity", st.InitialCapacity,
		"grows", st.Grows,
	)

	return buf, nil
}

func decode(ctx context.Context, data []byte, format audio.Format, o decodeOptions) (*audio.Buffer, formats.Stats, error) {
	if len(data) == 0 {
		return nil, formats.Stats{}, fmt.Errorf("%w: empty input", audio.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, formats.Stats{}, fmt.Errorf("%w: %w", audio.ErrDecodeFailed, err)
	}
	if format == audio.Unknown {
		format = formats.Detect(data)
	}

	var (
		src audio.Source
		err error
	)
	switch o.backend {
	case BackendNative:
		var dec audio.Decoder
		dec, err = formats.DecoderFor(o.registry, format)
		if err != nil {
			return nil, formats.Stats{}, err
		}
		src, err = dec.Decode(bytes.NewReader(data))
	case BackendFFmpeg:
		if format == audio.Unknown {
			return nil, formats.Stats{}, audio.ErrUnknownFormat
		}
		dec := ffmpeg.Decoder{Config: o.ffmpeg, Logger: o.logger}
		src, err = dec.DecodeContext(ctx, bytes.NewReader(data))
	default:
		return nil, formats.Stats{}, fmt.Errorf("%w: backend %d", audio.ErrBackendUnavailable, o.backend)
	}
	if err != nil {
		return nil, formats.Stats{}, err
	}
	defer src.Close()

	return formats.DecodeAll(src, format, int64(len(data)), o.maxSamples)
}

// DecodeFile reads and decodes path. The format is detected from the
// content, falling back to the file extension.
func DecodeFile(path string, opts ...DecodeOption) (*audio.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, record(fmt.Errorf("%w: %w", audio.Classify(err), err))
	}
	if len(data) == 0 {
		return nil, record(fmt.Errorf("%w: %s is empty", audio.ErrInvalidInput, path))
	}

	format := formats.Detect(data)
	if format == audio.Unknown {
		format = FormatFromPath(path)
	}
	if format == audio.Unknown {
		return nil, record(fmt.Errorf("%w: %s", audio.ErrUnknownFormat, path))
	}

	return Decode(data, format, opts...)
}

// FormatFromPath maps the extension of path to a Format.
func FormatFromPath(path string) audio.Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return audio.ParseFormat(strings.ToLower(ext))
}

// Open starts chunked decoding of the file at path. Pass audio.Unknown to
// detect the format. The decoder must be closed.
func Open(format audio.Format, path string, opts ...chunked.Option) (*chunked.Decoder, error) {
	return chunked.Open(format, path, opts...)
}

// Release drops the samples held by buf. It is safe to call on nil and
// more than once.
func Release(buf *audio.Buffer) {
	buf.Release()
}

const (
	kib = 1024
	mib = 1024 * kib
)

// OptimalChunkSize suggests how many bytes to hand to ProcessChunk at a
// time for a file of totalSize bytes. The value is advisory.
func OptimalChunkSize(format audio.Format, totalSize int64) int {
	base := 64 * kib
	switch format {
	case audio.FLAC, audio.MP4:
		base = 128 * kib
	case audio.WAV, audio.AIFF:
		base = 256 * kib
	}

	size := base
	switch {
	case totalSize < mib:
		size = base / 2
	case totalSize < 10*mib:
	case totalSize < 100*mib:
		size = base * 2
	default:
		size = base * 4
	}

	if totalSize > 0 && int64(size) > totalSize {
		return int(totalSize)
	}
	return size
}
