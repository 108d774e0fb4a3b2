// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 and MPEG-2 layer III audio.
//
// Bitstream decoding is done by github.com/hajimehoshi/go-mp3. Output is
// always two channels of float32 in [-1, 1]; mono streams are duplicated
// into both channels.
//
// # Decoding Whole Files
//
//	source, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// When the input is seekable the source also reports its length through
// audio.FrameCounter.
//
// # Chunked Decoding
//
// Units treats every frame as one unit. Frame boundaries come from
// ParseFrameHeader, ID3v2 tags at the start and ID3v1 tags at the end are
// skipped, and garbage between frames is skipped up to the next sync byte.
// A Xing or Info header in the first frame supplies the total length of
// VBR files.
//
// # Limitations
//
//   - MPEG-2.5 and free-format streams are rejected
//   - Layer I and II are not decoded
package mp3
