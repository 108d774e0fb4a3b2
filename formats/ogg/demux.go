// SPDX-License-Identifier: EPL-2.0

package ogg

import "github.com/ik5/audpcm/audio"

// Demuxer reads one logical stream page by page from a buffer that may
// start anywhere in the physical stream.
type Demuxer struct {
	asm Assembler
}

// NewDemuxer follows the stream with the given serial number.
func NewDemuxer(serial uint32) *Demuxer {
	d := &Demuxer{}
	d.asm.Pin(serial)
	return d
}

// ReadPage parses the page at the start of buf and returns the packets it
// completes together with the number of bytes consumed. Pages of other
// streams are consumed without packets. When buf does not start with a
// valid page, consumed skips to the next capture pattern and err is set.
// A partial page is reported as audio.ErrNeedMoreData, or consumed
// silently when final is set.
func (d *Demuxer) ReadPage(buf []byte, final bool) (packets [][]byte, page Page, consumed int, err error) {
	p, err := ParsePage(buf)
	switch {
	case err == audio.ErrNeedMoreData && final:
		return nil, Page{}, len(buf), nil
	case err == audio.ErrNeedMoreData:
		return nil, Page{}, 0, err
	case err != nil:
		return nil, Page{}, resync(buf), err
	}
	return d.asm.Push(p), p, p.Size, nil
}

// Reset drops any partial packet.
func (d *Demuxer) Reset() { d.asm.Reset() }

// resync returns how many bytes to drop so that buf starts at the next
// capture pattern. A trailing prefix of the pattern is kept.
func resync(buf []byte) int {
	if i := Sync(buf[1:]); i >= 0 {
		return i + 1
	}
	n := len(buf)
	for k := min(len(capturePattern)-1, len(buf)-1); k > 0; k-- {
		if string(buf[len(buf)-k:]) == string(capturePattern[:k]) {
			return n - k
		}
	}
	return n
}
