// SPDX-License-Identifier: EPL-2.0

package chunked

import (
	"log/slog"

	"github.com/ik5/audpcm/audio"
)

const (
	// DefaultHeaderWindow is read before decoding to find the stream
	// metadata.
	DefaultHeaderWindow = 64 * 1024
	// DefaultMP4HeaderWindow is larger since moov holds the whole sample
	// table. A moov that starts past it is not found.
	DefaultMP4HeaderWindow = 1024 * 1024
	// DefaultMaxHeaderWindow bounds header window growth for formats
	// whose metadata spans several units.
	DefaultMaxHeaderWindow = 4 * 1024 * 1024
	// DefaultChunkFrames sizes a fresh output chunk.
	DefaultChunkFrames = 8192

	// tailWindow is read from the end of the source to find its length.
	tailWindow = 128 * 1024
)

// Options configures a Decoder.
type Options struct {
	Logger *slog.Logger
	// Registry provides the unit decoders, formats.DefaultRegistry when
	// nil.
	Registry *audio.Registry

	// HeaderWindow of 0 picks a per-format default.
	HeaderWindow    int
	MaxHeaderWindow int

	// MaxCarryOver of 0 uses the backend's largest unit size.
	MaxCarryOver int

	ChunkFrames int
}

func DefaultOptions() Options {
	return Options{
		Logger:          slog.Default(),
		MaxHeaderWindow: DefaultMaxHeaderWindow,
		ChunkFrames:     DefaultChunkFrames,
	}
}

type Option func(*Options)

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func WithRegistry(r *audio.Registry) Option {
	return func(o *Options) { o.Registry = r }
}

// WithHeaderWindow sets the initial header read. Windows larger than the
// maximum also raise the maximum.
func WithHeaderWindow(n int) Option {
	return func(o *Options) {
		o.HeaderWindow = n
		o.MaxHeaderWindow = max(o.MaxHeaderWindow, n)
	}
}

func WithMaxCarryOver(n int) Option {
	return func(o *Options) { o.MaxCarryOver = n }
}

func WithChunkFrames(n int) Option {
	return func(o *Options) { o.ChunkFrames = n }
}

func headerWindow(o Options, f audio.Format) int {
	switch {
	case o.HeaderWindow > 0:
		return o.HeaderWindow
	case f == audio.MP4:
		return DefaultMP4HeaderWindow
	}
	return DefaultHeaderWindow
}
