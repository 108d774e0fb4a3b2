// SPDX-License-Identifier: EPL-2.0

package ogg

import "bytes"

// Assembler rebuilds packets that span page boundaries.
type Assembler struct {
	partial []byte
	// Serial pins the logical stream; pages of other streams are
	// ignored once it is set.
	Serial    uint32
	hasSerial bool
}

// Push feeds one page and returns the packets it completes. Returned
// slices are owned by the caller.
func (a *Assembler) Push(p Page) [][]byte {
	if !a.hasSerial {
		a.Serial, a.hasSerial = p.Serial, true
	} else if p.Serial != a.Serial {
		return nil
	}
	if !p.Continued() {
		a.partial = a.partial[:0]
	}
	// The head of a continued packet was never seen; drop its tail.
	orphan := p.Continued() && len(a.partial) == 0

	var out [][]byte
	off, start := 0, 0
	for _, l := range p.Lacing {
		off += int(l)
		if l == 255 {
			continue
		}
		if orphan {
			orphan = false
		} else {
			pkt := append(a.partial, p.Body[start:off]...)
			out = append(out, bytes.Clone(pkt))
		}
		a.partial = a.partial[:0]
		start = off
	}
	if start < off && !orphan {
		a.partial = append(a.partial, p.Body[start:off]...)
	}
	return out
}

// Pin sets the logical stream to follow before the first page arrives.
func (a *Assembler) Pin(serial uint32) { a.Serial, a.hasSerial = serial, true }

// Reset drops any partial packet, as after a seek.
func (a *Assembler) Reset() { a.partial = a.partial[:0] }

// Codec is the codec carried by a logical stream.
type Codec int

const (
	CodecUnknown Codec = iota
	CodecVorbis
	CodecOpus
	CodecFLAC
)

var codecNames = [...]string{"unknown", "vorbis", "opus", "flac"}

func (c Codec) String() string {
	if c < 0 || int(c) >= len(codecNames) {
		return codecNames[0]
	}
	return codecNames[c]
}

// Identify looks at the first packet of a stream.
func Identify(packet []byte) Codec {
	switch {
	case bytes.HasPrefix(packet, []byte("\x01vorbis")):
		return CodecVorbis
	case bytes.HasPrefix(packet, []byte("OpusHead")):
		return CodecOpus
	case bytes.HasPrefix(packet, []byte("\x7fFLAC")):
		return CodecFLAC
	}
	return CodecUnknown
}

// Probe identifies the codec of the first page in b.
func Probe(b []byte) Codec {
	p, err := ParsePage(b)
	if err != nil || len(p.Lacing) == 0 {
		// Accept truncated first pages by peeking past the header.
		if len(b) > headerSize {
			n := int(b[26])
			if len(b) > headerSize+n {
				return Identify(b[headerSize+n:])
			}
		}
		return CodecUnknown
	}
	var a Assembler
	if pkts := a.Push(p); len(pkts) > 0 {
		return Identify(pkts[0])
	}
	return Identify(p.Body)
}
