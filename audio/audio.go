// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"sync"
)

// Source streams decoded PCM from a whole input.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// FrameCounter is implemented by sources that know their length up front.
// TotalFrames returns 0 when the length is unknown.
type FrameCounter interface {
	TotalFrames() int64
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// StreamInfo describes a stream as discovered from its header.
type StreamInfo struct {
	SampleRate    int
	Channels      int
	BitsPerSample int

	// TotalFrames is 0 when unknown.
	TotalFrames int64

	// DataOffset is where the first coded unit starts, DataSize how many
	// bytes of coded units follow (0 when unknown).
	DataOffset int64
	DataSize   int64

	// BlockAlign is the size of one frame for uncompressed PCM.
	BlockAlign int
	// Bitrate in bits per second, 0 when unknown or variable.
	Bitrate int

	// Timescale and Duration come from container metadata.
	Timescale uint32
	Duration  uint64
}

// Unit is the outcome of decoding one unit. Samples are only valid until
// the next call on the decoder.
type Unit struct {
	Samples  []float32
	Consumed int
}

// UnitDecoder decodes one codec unit at a time from the front of a byte
// buffer. A decoder that cannot see a whole unit returns ErrNeedMoreData
// with nothing consumed; a malformed unit returns an error together with
// how many bytes to skip (possibly zero).
type UnitDecoder interface {
	Info() StreamInfo
	// DecodeUnit decodes from buf, whose first byte sits at pos in the
	// source. final reports that buf reaches the end of the source.
	DecodeUnit(buf []byte, pos int64, final bool) (Unit, error)
	// Flush drops state carried between units, e.g. after a seek.
	Flush()
	// MaxUnitSize bounds how many bytes a single unit may span.
	MaxUnitSize() int
	Close() error
}

// TailScanner is implemented by unit decoders that can learn the stream
// length from the last bytes of the source.
type TailScanner interface {
	ScanTail(tail []byte)
}

// UnitDecoderFactory prepares a UnitDecoder from the first bytes of a
// source. size is the full source size. It returns ErrNeedMoreData when
// header does not yet cover the stream metadata.
type UnitDecoderFactory interface {
	NewUnitDecoder(header []byte, size int64) (UnitDecoder, error)
}

// Registry for decoders by format.
type Registry struct {
	codecs map[Format]Decoder
	units  map[Format]UnitDecoderFactory

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[Format]Decoder),
		units:  make(map[Format]UnitDecoderFactory),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format Format, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[format] = d
}

func (r *Registry) Get(format Format) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[format]
	return d, ok
}

// RegisterUnits sets the chunked backend for a format.
func (r *Registry) RegisterUnits(format Format, f UnitDecoderFactory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.units[format] = f
}

func (r *Registry) Units(format Format) (UnitDecoderFactory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.units[format]
	return f, ok
}
