//go:build !opus

// SPDX-License-Identifier: EPL-2.0

package opus

import (
	"fmt"

	"github.com/ik5/audpcm/audio"
)

// Available reports whether packets can be decoded in this build.
const Available = false

func newPacketDecoder(int) (packetDecoder, error) {
	return nil, fmt.Errorf("%w: opus support not enabled (build with -tags opus)", audio.ErrBackendUnavailable)
}
