// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

var (
	ErrShortHeader      = fmt.Errorf("%w: box header truncated", audio.ErrInvalidInput)
	ErrZeroSizeBox      = fmt.Errorf("%w: box size 0 (to end of file) is not supported", audio.ErrContainerInvalid)
	ErrBadBoxSize       = fmt.Errorf("%w: box size out of bounds", audio.ErrContainerInvalid)
	ErrUnexpectedBox    = fmt.Errorf("%w: unexpected box type", audio.ErrContainerInvalid)
	ErrShortPayload     = fmt.Errorf("%w: box payload truncated", audio.ErrContainerInvalid)
	ErrBadVersion       = fmt.Errorf("%w: unsupported box version", audio.ErrContainerInvalid)
	ErrMissingFtyp      = fmt.Errorf("%w: ftyp box not found", audio.ErrContainerInvalid)
	ErrMissingMoov      = fmt.Errorf("%w: moov box not found", audio.ErrContainerInvalid)
	ErrUnsupportedBrand = fmt.Errorf("%w: unsupported major brand", audio.ErrUnsupportedCodec)
	ErrEmptySampleDesc  = fmt.Errorf("%w: sample description has no entries", audio.ErrNoAudioTrack)
)
