// SPDX-License-Identifier: EPL-2.0

// Package formats ties the codec backends together.
//
// Detect classifies raw bytes by their leading signature. DefaultRegistry
// maps every format to its whole-file decoder and, where one exists, to its
// chunked unit decoder. Decode and DecodeAll turn a whole input into an
// audio.Buffer, sizing the output up front from duration metadata or the
// input size and growing it as needed.
//
//	buf, stats, err := formats.Decode(data, audio.Unknown, nil)
//	if err != nil {
//	    // Handle error
//	}
//	fmt.Println(buf.Frames(), stats.Grows)
package formats
