//go:build opus

// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
	"gopkg.in/hraban/opus.v2"
)

// Available reports whether packets can be decoded in this build.
const Available = true

type libopus struct {
	dec      *opus.Decoder
	channels int
	pcm      []float32
}

func newPacketDecoder(channels int) (packetDecoder, error) {
	dec, err := opus.NewDecoder(SampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrBackendUnavailable, err)
	}
	return &libopus{
		dec:      dec,
		channels: channels,
		pcm:      make([]float32, maxFrameSamples*channels),
	}, nil
}

func (l *libopus) decode(pkt []byte) ([]float32, error) {
	n, err := l.dec.DecodeFloat32(pkt, l.pcm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPacket, err)
	}
	return l.pcm[:n*l.channels], nil
}

// reset replaces the decoder; an initialised one cannot be re-initialised.
func (l *libopus) reset() error {
	dec, err := opus.NewDecoder(SampleRate, l.channels)
	if err != nil {
		return err
	}
	l.dec = dec
	return nil
}
