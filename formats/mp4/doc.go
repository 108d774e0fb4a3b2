// SPDX-License-Identifier: EPL-2.0

// Package mp4 parses the ISOBMFF box tree of MP4/M4A files far enough to
// find and describe the first audio track.
//
// Boxes are length-prefixed: a big-endian 32-bit size and a FourCC type,
// or size 1 followed by a 64-bit size. Size 0 is rejected.
//
//	track, err := mp4.ValidateContainer(data)
//	if errors.Is(err, audio.ErrNoAudioTrack) {
//	    // video only
//	}
//	fmt.Println(track.Description.SampleRate, track.TotalFrames())
//
// The sample table is summarized, not indexed, so the package does not
// demux samples itself. Decoding is delegated to a Backend (whole file) or
// a CodecFactory (chunked).
package mp4
