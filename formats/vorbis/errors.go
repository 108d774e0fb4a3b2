// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

var (
	ErrNotVorbis  = fmt.Errorf("%w: ogg stream is not vorbis", audio.ErrUnsupportedCodec)
	ErrBadHeaders = fmt.Errorf("%w: invalid vorbis headers", audio.ErrContainerInvalid)
	ErrBadPacket  = fmt.Errorf("%w: invalid vorbis packet", audio.ErrDecodeFailed)
)
