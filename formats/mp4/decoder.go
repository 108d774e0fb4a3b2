// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/audpcm/audio"
)

// Decoder validates the container and hands the whole file to Backend,
// which does the actual demux and AAC decode.
type Decoder struct {
	Backend audio.Decoder
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading mp4 data: %w", err)
	}

	if _, err := ValidateContainer(data); err != nil {
		return nil, err
	}
	if d.Backend == nil {
		return nil, fmt.Errorf("%w: no mp4 backend configured", audio.ErrBackendUnavailable)
	}

	return d.Backend.Decode(bytes.NewReader(data))
}

// CodecFactory builds a unit decoder for a discovered track. header holds
// the leading bytes of the source, including moov.
type CodecFactory func(track Track, header []byte, size int64) (audio.UnitDecoder, error)

// Units prepares chunked decoding. The container is always validated;
// decoding itself needs a Codec. No AAC codec ships with this module, so
// the zero Units, which the default registry holds, fails every
// NewUnitDecoder call with audio.ErrBackendUnavailable. Plug a Codec into
// a custom registry to decode MP4 in chunks.
type Units struct {
	Codec CodecFactory
}

func (u Units) NewUnitDecoder(header []byte, size int64) (audio.UnitDecoder, error) {
	track, err := ValidateContainer(header)
	if err != nil {
		return nil, err
	}
	if u.Codec == nil {
		return nil, fmt.Errorf("%w: no AAC unit decoder registered", audio.ErrBackendUnavailable)
	}
	return u.Codec(track, header, size)
}
