// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"
)

// Buffer holds fully decoded interleaved PCM. Samples are float32 in
// [-1, 1]; len(Samples) is always a multiple of Channels.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int

	durationMs uint64
}

// NewBuffer validates the layout and derives the duration.
func NewBuffer(samples []float32, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d, channels %d", ErrInvalidInput, sampleRate, channels)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples not divisible by %d channels", ErrInvalidInput, len(samples), channels)
	}

	b := &Buffer{
		Samples:    samples,
		SampleRate: sampleRate,
		Channels:   channels,
	}
	b.durationMs = uint64(b.Frames()) * 1000 / uint64(sampleRate)

	return b, nil
}

// Frames returns the number of sample frames (samples per channel).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// DurationMs is derived once at construction.
func (b *Buffer) DurationMs() uint64 {
	if b == nil {
		return 0
	}
	return b.durationMs
}

func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.DurationMs()) * time.Millisecond
}

// Release drops the sample storage. It is safe on a nil or already
// released buffer.
func (b *Buffer) Release() {
	if b == nil {
		return
	}
	b.Samples = nil
	b.durationMs = 0
}
