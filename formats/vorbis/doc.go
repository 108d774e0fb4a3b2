// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio.
//
// Whole files are decoded with github.com/jfreymuth/oggvorbis. Chunked
// decoding works on Ogg pages: Units parses pages with the ogg package and
// feeds their packets to a github.com/jfreymuth/vorbis decoder.
//
// # Decoding Vorbis Files
//
//	file, _ := os.Open("audio.ogg")
//	source, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	// Read samples as float32 in range [-1.0, 1.0]
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// When the input is seekable the length of the stream is reported
// through audio.FrameCounter.
//
// # Channel Layout
//
// Samples are interleaved in Vorbis channel order:
//
//	[L0, R0, L1, R1, L2, R2, ...]
//
// # Chunked Decoding
//
// Each unit is one page of the logical stream whose headers were read
// first. Pages of other streams are skipped, packets spanning pages are
// reassembled, and a page with a bad checksum is dropped up to the next
// capture pattern. The last page is trimmed to its granule position as
// long as decoding ran from the first audio page.
//
// # Limitations
//
//   - Chained streams are not followed past the first logical stream
//   - Leading samples before the first granule position are not trimmed
package vorbis
