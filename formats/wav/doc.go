// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes RIFF/WAVE files.
//
// Chunk walking is done by github.com/go-audio/wav; samples are converted
// to float32 in [-1, 1] here.
//
// # Supported Formats
//
//   - Integer PCM, 8 (unsigned), 16, 24 and 32 bits
//   - IEEE float, 32 and 64 bits
//   - WAVE_FORMAT_EXTENSIBLE with an integer sub-format
//   - Any channel count and sample rate
//
// # Decoding
//
// Decoder reads a whole file and returns an audio.Source that also
// implements audio.FrameCounter:
//
//	source, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//	buf := make([]float32, source.BufSize())
//	n, err := source.ReadSamples(buf)
//
// Units is the chunked backend. Its units are runs of whole frames, so a
// split in the middle of a frame is carried to the next chunk.
//
// # Writing
//
// WriteWAV16 writes interleaved int16 samples; WriteBuffer quantizes an
// audio.Buffer first:
//
//	err := wav.WriteWAV16(file, 8000, 1, samples)
//
// # Errors
//
// ErrNotWavFile and ErrUnsupportedWavLayout match audio.ErrContainerInvalid;
// ErrUnsupportedSampleFormat (ADPCM, A-law and other compressed formats)
// matches audio.ErrUnsupportedCodec.
package wav
