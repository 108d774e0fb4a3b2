// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/ik5/audpcm/audio"
)

const (
	// SampleRate is the rate Opus always decodes at here.
	SampleRate = 48000
	// maxFrameSamples is 120 ms at 48 kHz, the longest Opus packet.
	maxFrameSamples = 5760
)

var (
	ErrBadHead        = fmt.Errorf("%w: invalid OpusHead", audio.ErrContainerInvalid)
	ErrChannelMapping = fmt.Errorf("%w: only mono and stereo opus streams are decoded", audio.ErrUnsupportedCodec)
	ErrBadPacket      = fmt.Errorf("%w: invalid opus packet", audio.ErrDecodeFailed)
	ErrNotOpus        = fmt.Errorf("%w: ogg stream is not opus", audio.ErrUnsupportedCodec)
)

// Head is the identification header of an Ogg Opus stream.
type Head struct {
	Version       uint8
	Channels      int
	PreSkip       int
	InputRate     uint32
	OutputGain    int16
	MappingFamily uint8
}

// ParseHead reads an OpusHead packet.
func ParseHead(pkt []byte) (Head, error) {
	if len(pkt) < 19 || !bytes.HasPrefix(pkt, []byte("OpusHead")) {
		return Head{}, ErrBadHead
	}

	h := Head{
		Version:       pkt[8],
		Channels:      int(pkt[9]),
		PreSkip:       int(binary.LittleEndian.Uint16(pkt[10:])),
		InputRate:     binary.LittleEndian.Uint32(pkt[12:]),
		OutputGain:    int16(binary.LittleEndian.Uint16(pkt[16:])),
		MappingFamily: pkt[18],
	}
	// Only the major version is binding.
	if h.Version>>4 != 0 || h.Channels == 0 {
		return Head{}, ErrBadHead
	}
	return h, nil
}
