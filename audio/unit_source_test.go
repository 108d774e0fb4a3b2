// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"
)

// byteUnits turns every byte into a one-sample unit; 0xFF is a bad unit
// and 0xFE a fatal one.
type byteUnits struct {
	closed bool
	out    [1]float32
}

func (b *byteUnits) Info() StreamInfo {
	return StreamInfo{SampleRate: 8000, Channels: 1, TotalFrames: 3}
}

func (b *byteUnits) Flush()           {}
func (b *byteUnits) MaxUnitSize() int { return 1 }

func (b *byteUnits) Close() error {
	b.closed = true
	return nil
}

func (b *byteUnits) DecodeUnit(buf []byte, _ int64, _ bool) (Unit, error) {
	switch buf[0] {
	case 0xFF:
		return Unit{}, ErrDecodeFailed
	case 0xFE:
		return Unit{}, ErrContainerInvalid
	}
	b.out[0] = float32(buf[0]) / 100
	return Unit{Samples: b.out[:], Consumed: 1}, nil
}

func TestUnitSource(t *testing.T) {
	t.Parallel()

	dec := &byteUnits{}
	src := NewUnitSource(dec, []byte{10, 0xFF, 20, 30})

	if fc, ok := src.(FrameCounter); !ok || fc.TotalFrames() != 3 {
		t.Error("TotalFrames not reported")
	}

	var got []float32
	buf := make([]float32, 2)
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	if want := []float32{0.1, 0.2, 0.3}; !slices.Equal(got, want) {
		t.Errorf("samples = %v, want %v", got, want)
	}

	if err := src.Close(); err != nil || !dec.closed {
		t.Errorf("Close() = %v", err)
	}
}

func TestUnitSource_Fatal(t *testing.T) {
	t.Parallel()

	src := NewUnitSource(&byteUnits{}, []byte{10, 0xFE, 20})

	n, err := src.ReadSamples(make([]float32, 4))
	if n != 1 || !errors.Is(err, ErrContainerInvalid) {
		t.Errorf("ReadSamples() = %d, %v", n, err)
	}
}
