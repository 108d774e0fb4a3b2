// SPDX-License-Identifier: EPL-2.0

package audpcm

import "github.com/ik5/audpcm/internal/lasterr"

func record(err error) error {
	return lasterr.Set(err)
}

// LastErrorMessage returns the text of the most recent error returned by
// Decode, DecodeFile, Open, or by the ProcessChunk and SeekTime methods of
// a chunked decoder. It is "" if nothing failed yet; each failure
// overwrites it. Prefer the returned error values; this exists for callers
// that only keep a string around.
func LastErrorMessage() string {
	return lasterr.Message()
}
