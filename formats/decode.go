// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/internal/pcmbuf"
)

// maxIdleReads bounds consecutive empty reads before a source is
// considered stuck.
const maxIdleReads = 1024

// Stats describes one whole-file decode.
type Stats struct {
	// Reads counts ReadSamples calls that produced samples.
	Reads int
	// InputBytes is the encoded size, when known.
	InputBytes int64
	// InitialCapacity and Grows show how well the output was presized.
	InitialCapacity int
	Grows           int
	Samples         int
}

// Decode decodes a whole in-memory input. An Unknown format is detected
// from the data; a nil registry means DefaultRegistry.
func Decode(data []byte, f audio.Format, r *audio.Registry) (*audio.Buffer, Stats, error) {
	if len(data) == 0 {
		return nil, Stats{}, fmt.Errorf("%w: empty input", audio.ErrInvalidInput)
	}
	if f == audio.Unknown {
		f = Detect(data)
	}

	dec, err := DecoderFor(r, f)
	if err != nil {
		return nil, Stats{}, err
	}

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Stats{}, err
	}
	defer src.Close()

	return DecodeAll(src, f, int64(len(data)), 0)
}

// DecodeAll drains src into a buffer. inputBytes is the encoded size used
// to presize the output when src does not know its length; maxSamples
// caps the output, 0 means unbounded. src is not closed.
func DecodeAll(src audio.Source, f audio.Format, inputBytes int64, maxSamples int) (*audio.Buffer, Stats, error) {
	rate, ch := src.SampleRate(), src.Channels()
	if rate <= 0 || ch <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: %d Hz, %d channels", audio.ErrContainerInvalid, rate, ch)
	}

	hint := pcmbuf.Hint{Format: f, InputBytes: inputBytes, SampleRate: rate, Channels: ch}
	if fc, ok := src.(audio.FrameCounter); ok {
		hint.TotalFrames = fc.TotalFrames()
	}

	st := Stats{InputBytes: inputBytes, InitialCapacity: pcmbuf.EstimateCapacity(hint)}
	out := pcmbuf.New(st.InitialCapacity, rate*ch, maxSamples)

	step := src.BufSize()
	if step < ch {
		step = 4096 * ch
	}
	step -= step % ch

	idle := 0
	for {
		n := step
		if maxSamples > 0 {
			n = min(n, maxSamples-out.Len())
			n -= n % ch
		}
		if n == 0 {
			// at the cap: anything more is an overflow
			probe := make([]float32, ch)
			if k, err := src.ReadSamples(probe); k > 0 {
				return nil, st, fmt.Errorf("%w: output exceeds %d samples", audio.ErrOutOfMemory, maxSamples)
			} else if err != nil && !errors.Is(err, io.EOF) {
				return nil, st, err
			}
			break
		}

		dst, err := out.Tail(n)
		if err != nil {
			return nil, st, err
		}
		k, err := src.ReadSamples(dst)
		out.Commit(k)
		switch {
		case k > 0:
			st.Reads++
			idle = 0
		case err == nil:
			if idle++; idle > maxIdleReads {
				return nil, st, fmt.Errorf("%w: decoder stopped making progress", audio.ErrDecodeFailed)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, st, err
		}
	}

	st.Grows = out.Grows()
	samples := out.Shrink()
	samples = samples[:len(samples)-len(samples)%ch]
	st.Samples = len(samples)

	buf, err := audio.NewBuffer(samples, rate, ch)
	return buf, st, err
}
