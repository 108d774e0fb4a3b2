// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

var (
	ErrBadSync          = fmt.Errorf("%w: invalid frame sync", audio.ErrDecodeFailed)
	ErrUnsupportedLayer = fmt.Errorf("%w: only MPEG-1/2 layer III is supported", audio.ErrUnsupportedCodec)
	ErrFreeBitrate      = fmt.Errorf("%w: free bitrate streams are not supported", audio.ErrUnsupportedCodec)
	ErrNoFrames         = fmt.Errorf("%w: no MPEG audio frames found", audio.ErrContainerInvalid)
	ErrTruncatedFrame   = fmt.Errorf("%w: truncated frame", audio.ErrDecodeFailed)
)
