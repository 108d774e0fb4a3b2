// SPDX-License-Identifier: EPL-2.0

// Package seek maps a time offset to an approximate source position.
//
// Estimates are monotonic in the requested time and never land past the
// end of the coded data, but they do not land on unit boundaries: the
// decoder resynchronizes from wherever the estimate points.
package seek

import (
	"fmt"
	"math/bits"

	"github.com/ik5/audpcm/audio"
)

// Family selects how a time fraction is turned into a byte offset.
type Family int

const (
	// Uncompressed data is addressed exactly by frame * block size.
	Uncompressed Family = iota
	// ConstantBitrate scales time by the nominal bitrate.
	ConstantBitrate
	// Proportional scales the time fraction against the data size.
	Proportional
	// Timescale rescales through the container timescale and duration.
	Timescale
)

// DefaultMargin is kept between an estimate and the end of the data when
// no margin is given.
const DefaultMargin = 1024

// Params describes the stream being sought in.
type Params struct {
	Family     Family
	SampleRate int

	TotalFrames int64
	DataOffset  int64
	// DataSize is the length of the coded data after DataOffset.
	DataSize int64

	BlockAlign int
	Bitrate    int

	Timescale uint32
	Duration  uint64

	// Margin bytes are kept before the end of the data.
	Margin int64
}

// ParamsFor builds Params from a stream description.
func ParamsFor(f audio.Format, info audio.StreamInfo, sourceSize int64, margin int) Params {
	p := Params{
		SampleRate:  info.SampleRate,
		TotalFrames: info.TotalFrames,
		DataOffset:  info.DataOffset,
		DataSize:    info.DataSize,
		BlockAlign:  info.BlockAlign,
		Bitrate:     info.Bitrate,
		Timescale:   info.Timescale,
		Duration:    info.Duration,
		Margin:      int64(margin),
	}
	if p.DataSize <= 0 || p.DataOffset+p.DataSize > sourceSize {
		p.DataSize = max(sourceSize-p.DataOffset, 0)
	}

	switch {
	case f == audio.WAV || f == audio.AIFF:
		p.Family = Uncompressed
	case f == audio.MP4 && info.Timescale > 0 && info.Duration > 0:
		p.Family = Timescale
	case f == audio.MP3 && info.TotalFrames == 0:
		p.Family = ConstantBitrate
	default:
		p.Family = Proportional
	}

	return p
}

// Result is an estimated position.
type Result struct {
	// Offset is the source byte position to resume reading from.
	Offset int64
	// Frame is the frame index the decoded stream is assumed to resume at.
	Frame int64
}

// FrameIndex converts milliseconds to a frame index.
func FrameIndex(ms int64, sampleRate int) int64 {
	return int64(mulDiv(uint64(ms), uint64(sampleRate), 1000))
}

// Estimate approximates where ms falls in the source.
func Estimate(ms int64, p Params) (Result, error) {
	if ms < 0 || p.SampleRate <= 0 {
		return Result{}, fmt.Errorf("%w: time %dms at %d Hz", audio.ErrSeekFailed, ms, p.SampleRate)
	}

	frame := FrameIndex(ms, p.SampleRate)
	if p.TotalFrames > 0 {
		frame = min(frame, p.TotalFrames)
	}

	var rel int64
	switch p.Family {
	case Uncompressed:
		if p.BlockAlign <= 0 {
			return Result{}, fmt.Errorf("%w: unknown block size", audio.ErrSeekFailed)
		}
		rel = frame * int64(p.BlockAlign)

	case Timescale:
		if p.Timescale == 0 || p.Duration == 0 {
			return Result{}, fmt.Errorf("%w: missing timescale", audio.ErrSeekFailed)
		}
		ts := mulDiv(uint64(ms), uint64(p.Timescale), 1000)
		ts = min(ts, p.Duration)
		frame = int64(mulDiv(ts, uint64(p.SampleRate), uint64(p.Timescale)))
		rel = int64(mulDiv(uint64(p.DataSize), ts, p.Duration))

	case ConstantBitrate:
		if p.Bitrate > 0 {
			rel = int64(mulDiv(uint64(ms), uint64(p.Bitrate), 8000))
			break
		}
		fallthrough

	case Proportional:
		switch {
		case p.TotalFrames > 0:
			rel = int64(mulDiv(uint64(p.DataSize), uint64(frame), uint64(p.TotalFrames)))
		case p.Bitrate > 0:
			rel = int64(mulDiv(uint64(ms), uint64(p.Bitrate), 8000))
		default:
			return Result{}, fmt.Errorf("%w: stream length unknown", audio.ErrSeekFailed)
		}

	default:
		return Result{}, fmt.Errorf("%w: unknown seek family %d", audio.ErrSeekFailed, p.Family)
	}

	margin := p.Margin
	if margin <= 0 {
		margin = DefaultMargin
	}
	limit := max(p.DataSize-margin, 0)
	if p.Family == Uncompressed {
		// stay on a frame boundary
		limit -= limit % int64(p.BlockAlign)
	}
	rel = min(rel, limit)
	if p.Family == Uncompressed {
		frame = rel / int64(p.BlockAlign)
	}

	return Result{Offset: p.DataOffset + rel, Frame: frame}, nil
}

// mulDiv computes a*b/c, saturating on overflow.
func mulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return ^uint64(0) >> 1
	}
	q, _ := bits.Div64(hi, lo, c)
	return q
}
