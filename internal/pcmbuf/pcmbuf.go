// SPDX-License-Identifier: EPL-2.0

// Package pcmbuf sizes and grows decoded sample buffers. Whole-file and
// chunked decoding share the same policy.
package pcmbuf

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

const (
	// MinSeconds of audio the initial estimate always covers.
	MinSeconds = 30
	// MinSamples is the absolute floor of an initial estimate (10 MiB of
	// float32).
	MinSamples = 10 * 1024 * 1024 / 4
	// DurationMargin multiplies estimates derived from duration metadata.
	DurationMargin = 3
)

// compressionRatio is how many decoded samples one encoded byte may
// expand to, per format.
var compressionRatio = map[audio.Format]int{
	audio.WAV:  2,
	audio.AIFF: 2,
	audio.FLAC: 4,
	audio.MP3:  20,
	audio.Ogg:  25,
	audio.Opus: 30,
	audio.MP4:  20,
}

// CompressionRatio returns the expansion factor for f.
func CompressionRatio(f audio.Format) int {
	if r, ok := compressionRatio[f]; ok {
		return r
	}
	return 20
}

// Hint carries what is known about a stream before decoding it.
type Hint struct {
	Format      audio.Format
	InputBytes  int64
	SampleRate  int
	Channels    int
	TotalFrames int64
}

// EstimateCapacity returns an initial capacity in samples. Duration
// metadata wins over the input size when present; both are then raised to
// the MinSeconds and MinSamples floors.
func EstimateCapacity(h Hint) int {
	var est int64
	switch {
	case h.TotalFrames > 0 && h.Channels > 0:
		est = h.TotalFrames * int64(h.Channels) * DurationMargin
	default:
		est = h.InputBytes * int64(CompressionRatio(h.Format))
	}

	if floor := int64(h.SampleRate) * int64(h.Channels) * MinSeconds; est < floor {
		est = floor
	}
	if est < MinSamples {
		est = MinSamples
	}

	return int(est)
}

// NextCapacity grows current so that at least needed samples fit. The new
// capacity is the larger of current plus 50% and needed plus headroom.
func NextCapacity(current, needed, headroom int) int {
	if needed <= current {
		return current
	}
	grown := current + current/2
	return max(grown, needed+headroom)
}

// Samples is a growable sample store that follows the package policy.
type Samples struct {
	buf []float32
	// headroom is one second of audio (rate * channels).
	headroom int
	limit    int
	grows    int
}

// New returns a store with the given initial capacity. limit caps the
// number of samples held; 0 means unbounded.
func New(capacity, headroom, limit int) *Samples {
	if limit > 0 && capacity > limit {
		capacity = limit
	}
	return &Samples{
		buf:      make([]float32, 0, capacity),
		headroom: headroom,
		limit:    limit,
	}
}

// Append copies p, growing the storage when needed. It fails with
// audio.ErrOutOfMemory once the limit would be exceeded.
func (s *Samples) Append(p []float32) error {
	if err := s.Reserve(len(p)); err != nil {
		return err
	}
	s.buf = append(s.buf, p...)
	return nil
}

// Reserve makes room for n more samples.
func (s *Samples) Reserve(n int) error {
	needed := len(s.buf) + n
	if s.limit > 0 && needed > s.limit {
		return fmt.Errorf("%w: %d samples exceed limit %d", audio.ErrOutOfMemory, needed, s.limit)
	}
	if needed <= cap(s.buf) {
		return nil
	}

	c := NextCapacity(cap(s.buf), needed, s.headroom)
	if s.limit > 0 {
		c = min(c, s.limit)
	}
	grown := make([]float32, len(s.buf), c)
	copy(grown, s.buf)
	s.buf = grown
	s.grows++

	return nil
}

// Tail exposes n writable samples past the current length. Commit makes
// them part of the content.
func (s *Samples) Tail(n int) ([]float32, error) {
	if err := s.Reserve(n); err != nil {
		return nil, err
	}
	return s.buf[len(s.buf) : len(s.buf)+n], nil
}

// Commit extends the length by n samples previously written via Tail.
func (s *Samples) Commit(n int) {
	s.buf = s.buf[:len(s.buf)+n]
}

func (s *Samples) Len() int   { return len(s.buf) }
func (s *Samples) Cap() int   { return cap(s.buf) }
func (s *Samples) Grows() int { return s.grows }

// Samples returns the current content without copying.
func (s *Samples) Samples() []float32 { return s.buf }

// Shrink trims the capacity to the exact length and hands the slice over.
// The store is empty afterwards.
func (s *Samples) Shrink() []float32 {
	out := s.buf
	if cap(out) > len(out) {
		out = make([]float32, len(s.buf))
		copy(out, s.buf)
	}
	s.buf = nil
	return out
}

// Reset empties the store, keeping its storage.
func (s *Samples) Reset() {
	s.buf = s.buf[:0]
}
