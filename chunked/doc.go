// SPDX-License-Identifier: EPL-2.0

// Package chunked decodes audio incrementally from byte chunks of any
// size.
//
// A Decoder owns one source. Each ProcessChunk call decodes as many whole
// codec units as the new bytes complete and keeps the rest as carry-over
// for the next call, so chunks may be split anywhere:
//
//	d, err := chunked.Open(audio.MP3, "song.mp3")
//	if err != nil {
//	    // Handle error
//	}
//	defer d.Close()
//
//	for {
//	    fc, err := d.NextChunk(64 * 1024)
//	    if err == io.EOF {
//	        break
//	    }
//	    res := d.ProcessChunk(fc)
//	    if res.Err != nil {
//	        // Handle error
//	    }
//	    for _, c := range res.Chunks {
//	        play(c.Samples)
//	    }
//	    if fc.IsLast {
//	        break
//	    }
//	}
//
// Malformed units are skipped and decoding resumes at the next unit the
// backend recognizes. SeekTime jumps to an estimated position; it is
// approximate and never lands exactly on a unit boundary.
//
// A Decoder is not safe for concurrent use. Independent decoders share
// nothing and may run on separate goroutines.
package chunked
