// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC streams with github.com/mewkiz/flac.
//
// Decoder reads a whole stream frame by frame. Units splits a byte stream
// into frames for chunked decoding: a frame ends where the next valid
// frame header starts and the CRC-16 of the bytes before it matches, so
// frames can be found without decoding their subframes first.
//
// Samples are scaled by the bit depth of each frame into [-1, 1).
package flac
