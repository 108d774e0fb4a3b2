// SPDX-License-Identifier: EPL-2.0

// Package opus decodes Ogg Opus streams.
//
// Packets are decoded by libopus through gopkg.in/hraban/opus.v2, which
// needs cgo and is only compiled with the opus build tag:
//
//	go build -tags opus ./...
//
// Without the tag every decoder reports audio.ErrBackendUnavailable and
// Available is false. Header parsing and page handling work either way.
//
// Output is always 48 kHz. The pre-skip announced in OpusHead is dropped
// from the start of the stream and the last page is trimmed to its
// granule position. Only mono and stereo streams are supported.
package opus
