// SPDX-License-Identifier: EPL-2.0

// Package audio holds the data model and backend contracts shared by every
// decoder in the module.
//
// # Data Model
//
// A Buffer owns fully decoded interleaved float32 PCM. The chunked path
// works with FileChunk (encoded input span), Chunk (decoded output span)
// and ChunkResult (the outcome of one ProcessChunk call).
//
// # Backends
//
// Two contracts exist per format:
//
//   - Decoder turns a whole input into a streaming Source.
//   - UnitDecoderFactory prepares a UnitDecoder, which decodes exactly one
//     codec unit (an MP3 frame, a FLAC frame, an Ogg page, a block of PCM
//     frames) from the front of a byte buffer.
//
// Backends are looked up through a Registry keyed by Format:
//
//	registry := audio.NewRegistry()
//	registry.Register(audio.WAV, wav.Decoder{})
//	registry.RegisterUnits(audio.WAV, wav.Units{})
//
// # Errors
//
// Every failure is translated into the Error set (ErrInvalidInput,
// ErrContainerInvalid, ErrDecodeFailed and so on). Backends wrap their own
// errors with one of these values so errors.Is works across package
// boundaries, and Classify maps arbitrary errors into the set:
//
//	if audio.Classify(err) == audio.ErrBackendUnavailable {
//	    // fall back to another backend
//	}
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
package audio
