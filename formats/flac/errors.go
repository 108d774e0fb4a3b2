// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

var (
	ErrNotFlacFile   = fmt.Errorf("%w: missing fLaC signature", audio.ErrContainerInvalid)
	ErrNoStreamInfo  = fmt.Errorf("%w: first metadata block is not STREAMINFO", audio.ErrContainerInvalid)
	ErrBadSync       = fmt.Errorf("%w: invalid frame header", audio.ErrDecodeFailed)
	ErrFrameTooLarge = fmt.Errorf("%w: no frame end within the maximum frame size", audio.ErrDecodeFailed)
)
