// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"bytes"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/formats/ogg"
)

// MinSignature is the shortest input Detect classifies.
const MinSignature = 4

// ftypScan bounds how far into the input an ftyp box is looked for.
const ftypScan = 64

// Detect classifies b by its leading signature. Ogg streams are probed
// further to tell Opus from Vorbis; a stream that cannot be identified is
// reported as audio.Ogg.
func Detect(b []byte) audio.Format {
	if len(b) < MinSignature {
		return audio.Unknown
	}

	switch {
	case bytes.HasPrefix(b, []byte("ID3")):
		return audio.MP3
	case b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		return audio.MP3
	case len(b) >= 12 && bytes.HasPrefix(b, []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return audio.WAV
	case bytes.HasPrefix(b, []byte("fLaC")):
		return audio.FLAC
	case bytes.HasPrefix(b, []byte("OggS")):
		return detectOgg(b)
	case len(b) >= 12 && bytes.HasPrefix(b, []byte("FORM")) &&
		(bytes.Equal(b[8:12], []byte("AIFF")) || bytes.Equal(b[8:12], []byte("AIFC"))):
		return audio.AIFF
	case hasFtyp(b):
		return audio.MP4
	}

	return audio.Unknown
}

func detectOgg(b []byte) audio.Format {
	if ogg.Probe(b) == ogg.CodecOpus {
		return audio.Opus
	}
	return audio.Ogg
}

// hasFtyp looks for an ftyp box type at offset 4, then at every 4-byte
// step within the first bytes.
func hasFtyp(b []byte) bool {
	for i := 0; i+8 <= len(b) && i < ftypScan; i += 4 {
		if bytes.Equal(b[i+4:i+8], []byte("ftyp")) {
			return true
		}
	}
	return false
}
