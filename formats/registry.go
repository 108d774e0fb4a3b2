// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"fmt"
	"sync"

	"github.com/ik5/audpcm/audio"
	"github.com/ik5/audpcm/formats/aiff"
	"github.com/ik5/audpcm/formats/ffmpeg"
	"github.com/ik5/audpcm/formats/flac"
	"github.com/ik5/audpcm/formats/mp3"
	"github.com/ik5/audpcm/formats/mp4"
	"github.com/ik5/audpcm/formats/opus"
	"github.com/ik5/audpcm/formats/vorbis"
	"github.com/ik5/audpcm/formats/wav"
)

// NewRegistry returns a registry holding every bundled backend. MP4 is
// validated natively and decoded by ffmpeg; it has no chunked decoder
// unless an AAC codec is plugged into mp4.Units.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()

	r.Register(audio.WAV, wav.Decoder{})
	r.RegisterUnits(audio.WAV, wav.Units{})

	r.Register(audio.MP3, mp3.Decoder{})
	r.RegisterUnits(audio.MP3, mp3.Units{})

	r.Register(audio.FLAC, flac.Decoder{})
	r.RegisterUnits(audio.FLAC, flac.Units{})

	r.Register(audio.Ogg, vorbis.Decoder{})
	r.RegisterUnits(audio.Ogg, vorbis.Units{})

	r.Register(audio.Opus, opus.Decoder{})
	r.RegisterUnits(audio.Opus, opus.Units{})

	r.Register(audio.AIFF, aiff.Decoder{})

	r.Register(audio.MP4, mp4.Decoder{Backend: ffmpeg.Decoder{}})
	r.RegisterUnits(audio.MP4, mp4.Units{})

	return r
}

// DefaultRegistry is shared by callers that pass no registry.
var DefaultRegistry = sync.OnceValue(NewRegistry)

func registryOr(r *audio.Registry) *audio.Registry {
	if r == nil {
		return DefaultRegistry()
	}
	return r
}

// DecoderFor returns the whole-file decoder for f.
func DecoderFor(r *audio.Registry, f audio.Format) (audio.Decoder, error) {
	if f == audio.Unknown {
		return nil, audio.ErrUnknownFormat
	}
	d, ok := registryOr(r).Get(f)
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for %s", audio.ErrUnsupportedCodec, f)
	}
	return d, nil
}

// NewUnitDecoder prepares chunked decoding of f from the leading bytes of
// a source of the given size.
func NewUnitDecoder(r *audio.Registry, f audio.Format, header []byte, size int64) (audio.UnitDecoder, error) {
	if f == audio.Unknown {
		return nil, audio.ErrUnknownFormat
	}
	u, ok := registryOr(r).Units(f)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not supported for chunked decoding", audio.ErrUnsupportedCodec, f)
	}
	return u.NewUnitDecoder(header, size)
}
