// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

var (
	ErrNotWavFile              = fmt.Errorf("%w: not a WAV file", audio.ErrContainerInvalid)
	ErrUnsupportedWavLayout    = fmt.Errorf("%w: fmt or data chunk not found", audio.ErrContainerInvalid)
	ErrUnsupportedSampleFormat = fmt.Errorf("%w: unsupported WAV sample format", audio.ErrUnsupportedCodec)
)
