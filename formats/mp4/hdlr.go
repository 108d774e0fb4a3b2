// SPDX-License-Identifier: EPL-2.0

package mp4

import "encoding/binary"

// ParseHandlerReference returns the handler type of the hdlr box at the
// start of b.
func ParseHandlerReference(b []byte) (FourCC, error) {
	p, err := payloadOf(b, TypeHdlr)
	if err != nil {
		return 0, err
	}
	// version/flags and pre_defined come first
	if len(p) < 12 {
		return 0, ErrShortPayload
	}
	return FourCC(binary.BigEndian.Uint32(p[8:])), nil
}
