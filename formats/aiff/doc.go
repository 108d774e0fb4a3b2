// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// AIFF is Apple's standard audio file format, commonly used on macOS.
//
// # Supported Formats
//
//   - Uncompressed AIFF
//   - 8, 16, 24 and 32-bit signed PCM
//   - Any channel count and sample rate
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
//	// Read samples as float32 in range [-1.0, 1.0]
//	buf := make([]float32, 4096)
//	n, err := source.ReadSamples(buf)
//
// The source reports the frame count of the COMM chunk through
// audio.FrameCounter.
//
// # Error Handling
//
// Errors wrap the audio error set:
//   - ErrNotAiffFile and ErrUnsupportedAiffLayout are audio.ErrContainerInvalid
//   - ErrUnsupportedBitDepth is audio.ErrUnsupportedCodec
//
// # AIFF vs. WAV
//
// AIFF is similar to WAV but:
//   - Uses big-endian byte order (WAV uses little-endian)
//   - Stores sample rate as 80-bit float (WAV uses 32-bit int)
//
// # Limitations
//
//   - AIFF-C compressed data is not decoded
//   - There is no chunked decoding; AIFF only decodes as a whole file
package aiff
