// SPDX-License-Identifier: EPL-2.0

package chunked

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/formats"
	"github.com/ik5/audpcm/internal/lasterr"
	"github.com/ik5/audpcm/internal/pcmbuf"
	"github.com/ik5/audpcm/seek"
)

var (
	ErrClosed        = fmt.Errorf("%w: decoder closed", audio.ErrInvalidInput)
	ErrEmptySource   = fmt.Errorf("%w: empty source", audio.ErrInvalidInput)
	ErrBadPosition   = fmt.Errorf("%w: negative chunk position", audio.ErrInvalidInput)
	ErrNoProgress    = fmt.Errorf("%w: unit decoder made no progress", audio.ErrDesynchronized)
	ErrCarryOverflow = fmt.Errorf("%w: undecodable bytes exceed the largest unit", audio.ErrDesynchronized)
)

// Decoder drives a unit decoder across chunk boundaries.
type Decoder struct {
	id     uuid.UUID
	format audio.Format
	opts   Options
	log    *slog.Logger

	src   io.ReadSeeker
	owned io.Closer
	size  int64

	unit     audio.UnitDecoder
	info     audio.StreamInfo
	maxCarry int

	state  State
	err    error
	closed bool

	work  []byte
	carry []byte
	// next is the source offset the next FileChunk should start at.
	next int64
	// read is where NextChunk reads from.
	read    int64
	readBuf []byte

	// position counts frames handed out, or the frame a seek landed on.
	position int64
}

// Open decodes the file at path. An Unknown format is detected from the
// first bytes.
func Open(format audio.Format, path string, opts ...Option) (*Decoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, lasterr.Set(fmt.Errorf("%w: %w", audio.ErrInvalidInput, err))
	}

	d, err := New(format, f, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.owned = f

	return d, nil
}

// New decodes src, which stays owned by the caller. The stream metadata
// must be within the header window at the start of src.
func New(format audio.Format, src io.ReadSeeker, opts ...Option) (*Decoder, error) {
	d, err := newDecoder(format, src, opts)
	if err != nil {
		return nil, lasterr.Set(err)
	}
	return d, nil
}

func newDecoder(format audio.Format, src io.ReadSeeker, opts []Option) (*Decoder, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	d := &Decoder{
		id:     uuid.New(),
		format: format,
		opts:   o,
		src:    src,
	}

	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: sizing source: %w", audio.ErrInvalidInput, err)
	}
	if size == 0 {
		return nil, ErrEmptySource
	}
	d.size = size

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decoder) init() error {
	window := headerWindow(d.opts, d.format)

	var n int
	for {
		n = int(min(int64(window), d.size))
		header, err := d.readAt(0, n)
		if err != nil {
			return err
		}

		if d.format == audio.Unknown {
			if d.format = formats.Detect(header); d.format == audio.Unknown {
				return audio.ErrUnknownFormat
			}
			window = max(window, headerWindow(d.opts, d.format))
			continue
		}

		d.unit, err = formats.NewUnitDecoder(d.opts.Registry, d.format, header, d.size)
		if err == nil {
			break
		}
		if !errors.Is(err, audio.ErrNeedMoreData) {
			return err
		}
		if int64(n) >= d.size {
			return fmt.Errorf("%w: stream metadata is truncated", audio.ErrContainerInvalid)
		}
		if window >= d.opts.MaxHeaderWindow {
			return fmt.Errorf("%w: stream metadata not within the first %d bytes", audio.ErrContainerInvalid, n)
		}
		window = min(window*2, d.opts.MaxHeaderWindow)
	}

	if ts, ok := d.unit.(audio.TailScanner); ok && d.size > int64(n) {
		off := max(d.size-tailWindow, int64(n))
		tail, err := d.readAt(off, int(d.size-off))
		if err != nil {
			d.unit.Close()
			return err
		}
		ts.ScanTail(tail)
	}

	if _, err := d.src.Seek(0, io.SeekStart); err != nil {
		d.unit.Close()
		return fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}

	d.info = d.unit.Info()
	d.maxCarry = d.opts.MaxCarryOver
	if d.maxCarry <= 0 {
		d.maxCarry = d.unit.MaxUnitSize()
	}
	d.log = d.opts.Logger.With(
		slog.String("id", d.id.String()),
		slog.String("format", d.format.String()),
	)
	d.state = Initialized

	d.log.Info("chunked decoder ready",
		slog.Int("sample_rate", d.info.SampleRate),
		slog.Int("channels", d.info.Channels),
		slog.Int64("total_frames", d.info.TotalFrames),
		slog.Int64("source_size", d.size),
		slog.Int("header_bytes", n),
	)

	return nil
}

func (d *Decoder) readAt(off int64, n int) ([]byte, error) {
	if _, err := d.src.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.src, b); err != nil {
		return nil, fmt.Errorf("%w: reading source: %w", audio.ErrInvalidInput, err)
	}
	return b, nil
}

func (d *Decoder) ID() uuid.UUID          { return d.id }
func (d *Decoder) Format() audio.Format   { return d.format }
func (d *Decoder) Info() audio.StreamInfo { return d.info }
func (d *Decoder) State() State           { return d.state }
func (d *Decoder) SampleRate() int        { return d.info.SampleRate }
func (d *Decoder) Channels() int          { return d.info.Channels }
func (d *Decoder) SourceSize() int64      { return d.size }
func (d *Decoder) TotalFrames() int64     { return d.info.TotalFrames }
func (d *Decoder) Err() error             { return d.err }
func (d *Decoder) CarryOver() int         { return len(d.carry) }

// Position is the frame index the next decoded sample will carry.
func (d *Decoder) Position() int64 { return d.position }

// SourcePosition is the byte offset the next FileChunk is expected at.
func (d *Decoder) SourcePosition() int64 { return d.next }

// NextChunk reads up to size bytes from the source. The data is reused by
// the following call. At the end of the source it returns io.EOF.
func (d *Decoder) NextChunk(size int) (audio.FileChunk, error) {
	if d.closed {
		return audio.FileChunk{}, ErrClosed
	}
	if size <= 0 {
		return audio.FileChunk{}, fmt.Errorf("%w: chunk size %d", audio.ErrInvalidInput, size)
	}
	if d.read >= d.size {
		return audio.FileChunk{Position: d.size, IsLast: true}, io.EOF
	}

	n := int(min(int64(size), d.size-d.read))
	if cap(d.readBuf) < n {
		d.readBuf = make([]byte, n)
	}
	buf := d.readBuf[:n]

	if _, err := d.src.Seek(d.read, io.SeekStart); err != nil {
		return audio.FileChunk{}, fmt.Errorf("%w: %w", audio.ErrInvalidInput, err)
	}
	if _, err := io.ReadFull(d.src, buf); err != nil {
		return audio.FileChunk{}, fmt.Errorf("%w: reading source: %w", audio.ErrInvalidInput, err)
	}

	fc := audio.FileChunk{Data: buf, Position: d.read, IsLast: d.read+int64(n) >= d.size}
	d.read += int64(n)

	return fc, nil
}

// ProcessChunk decodes everything fc completes. The result either carries
// decoded chunks or an error, never both.
func (d *Decoder) ProcessChunk(fc audio.FileChunk) audio.ChunkResult {
	res := d.processChunk(fc)
	lasterr.Set(res.Err)
	return res
}

func (d *Decoder) processChunk(fc audio.FileChunk) audio.ChunkResult {
	switch {
	case d.closed:
		return audio.ChunkResult{Status: audio.StatusError, Err: ErrClosed}
	case d.state == Error:
		return audio.ChunkResult{Status: audio.StatusError, Err: d.err}
	case d.state == Uninitialized:
		return audio.ChunkResult{Status: audio.StatusError, Err: fmt.Errorf("%w: decoder not initialized", audio.ErrInvalidInput)}
	case fc.Position < 0:
		return audio.ChunkResult{Status: audio.StatusError, Err: ErrBadPosition}
	}

	if fc.Position != d.next {
		d.discontinuity(fc.Position)
	}
	d.state = Decoding

	base := fc.Position - int64(len(d.carry))
	d.work = append(append(d.work[:0], d.carry...), fc.Data...)
	d.carry = d.carry[:0]
	d.next = fc.Position + int64(len(fc.Data))

	ch := max(d.info.Channels, 1)
	out := pcmbuf.New(d.opts.ChunkFrames*ch, d.info.SampleRate*ch, 0)

	cursor, skipped := 0, 0
loop:
	for cursor < len(d.work) {
		u, err := d.unit.DecodeUnit(d.work[cursor:], base+int64(cursor), fc.IsLast)
		switch {
		case err == nil:
			if u.Consumed <= 0 {
				return d.fail(ErrNoProgress)
			}
			if err := out.Append(u.Samples); err != nil {
				return d.fail(err)
			}
			cursor += u.Consumed

		case errors.Is(err, audio.ErrNeedMoreData):
			break loop

		case audio.Classify(err).Fatal():
			return d.fail(err)

		default:
			skip := max(u.Consumed, 1)
			d.log.Debug("skipping undecodable bytes",
				slog.Int64("offset", base+int64(cursor)),
				slog.Int("bytes", skip),
				slog.Any("error", err),
			)
			cursor += skip
			skipped += skip
		}
	}

	rest := d.work[cursor:]
	switch {
	case fc.IsLast && len(rest) > 0:
		d.log.Warn("discarding incomplete trailing unit", slog.Int("bytes", len(rest)))
	case len(rest) > d.maxCarry:
		return d.fail(fmt.Errorf("%w: %d bytes at offset %d, limit %d", ErrCarryOverflow, len(rest), base+int64(cursor), d.maxCarry))
	case len(rest) > 0:
		d.carry = append(d.carry, rest...)
	}

	if skipped > 0 {
		d.log.Debug("resynchronized", slog.Int("skipped", skipped))
	}

	res := audio.ChunkResult{Status: audio.StatusSuccess}
	if out.Len() > 0 || fc.IsLast {
		samples := out.Shrink()
		samples = samples[:len(samples)-len(samples)%ch]
		res.Chunks = []audio.Chunk{{
			Samples:     samples,
			StartSample: d.position,
			IsLast:      fc.IsLast,
		}}
		d.position += int64(len(samples) / ch)
	}
	if len(res.Chunks) == 0 {
		res.Status = audio.StatusEmpty
	}
	if fc.IsLast {
		d.state = Finished
		d.log.Debug("reached end of stream", slog.Int64("frames", d.position))
	}

	return res
}

// discontinuity drops carried bytes that cannot continue at pos.
func (d *Decoder) discontinuity(pos int64) {
	if len(d.carry) > 0 {
		d.log.Warn("chunk does not continue the previous one, dropping carry-over",
			slog.Int64("expected", d.next),
			slog.Int64("got", pos),
			slog.Int("dropped", len(d.carry)),
		)
	}
	d.carry = d.carry[:0]
	d.unit.Flush()
}

func (d *Decoder) fail(err error) audio.ChunkResult {
	d.state = Error
	d.err = err
	d.carry = d.carry[:0]
	d.log.Error("chunked decode failed", slog.Any("error", err))
	return audio.ChunkResult{Status: audio.StatusError, Err: err}
}

// SeekTime moves to an estimated position of ms milliseconds. Carry-over
// is dropped and the backend flushed; the next FileChunk should start at
// SourcePosition, which is also where NextChunk continues. A failed
// estimate leaves the decoder where it was.
func (d *Decoder) SeekTime(ms int64) error {
	return lasterr.Set(d.seekTime(ms))
}

func (d *Decoder) seekTime(ms int64) error {
	switch {
	case d.closed:
		return ErrClosed
	case d.state == Error:
		return d.err
	case d.state == Uninitialized:
		return fmt.Errorf("%w: decoder not initialized", audio.ErrSeekFailed)
	}

	p := seek.ParamsFor(d.format, d.info, d.size, 0)
	r, err := seek.Estimate(ms, p)
	if err != nil {
		d.log.Warn("seek failed", slog.Int64("ms", ms), slog.Any("error", err))
		return err
	}

	prev := d.state
	d.state = Seeking
	if _, err := d.src.Seek(r.Offset, io.SeekStart); err != nil {
		d.state = prev
		return fmt.Errorf("%w: %w", audio.ErrSeekFailed, err)
	}

	d.carry = d.carry[:0]
	d.unit.Flush()
	d.next = r.Offset
	d.read = r.Offset
	d.position = r.Frame
	d.state = Decoding

	d.log.Info("seeked",
		slog.Int64("ms", ms),
		slog.Int64("offset", r.Offset),
		slog.Int64("frame", r.Frame),
	)

	return nil
}

// Close releases the backend and, when the decoder opened it, the source.
// It may be called any number of times from any state.
func (d *Decoder) Close() error {
	if d == nil || d.closed {
		return nil
	}
	d.closed = true
	d.carry, d.work, d.readBuf = nil, nil, nil

	var errs []error
	if d.unit != nil {
		errs = append(errs, d.unit.Close())
	}
	if d.owned != nil {
		errs = append(errs, d.owned.Close())
	}

	if d.log != nil {
		d.log.Info("chunked decoder closed", slog.Int64("frames", d.position))
	}

	return errors.Join(errs...)
}
