// SPDX-License-Identifier: EPL-2.0

// Package audpcm decodes compressed and uncompressed audio into
// interleaved float32 PCM.
//
// Two paths are offered. Decode and DecodeFile turn a whole input into an
// audio.Buffer in one call. Open returns a chunked.Decoder that accepts
// the file piece by piece and emits PCM chunks, so long files can be
// processed with bounded memory and seeked by time.
//
// # Supported Formats
//
//   - WAV (PCM 8/16/24/32-bit, float) via formats/wav
//   - MP3 via formats/mp3
//   - FLAC via formats/flac
//   - Ogg Vorbis via formats/vorbis
//   - Ogg Opus via formats/opus (build tag opus)
//   - AIFF via formats/aiff (whole file only)
//   - MP4/M4A via formats/mp4, validated natively and decoded by ffmpeg
//
// # Quick Start
//
//	data, _ := os.ReadFile("song.flac")
//	buf, err := audpcm.Decode(data, audpcm.Detect(data))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer audpcm.Release(buf)
//	fmt.Println(buf.SampleRate, buf.Channels, buf.Frames())
//
// # Chunked Decoding
//
//	dec, err := audpcm.Open(audio.Unknown, "song.mp3")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dec.Close()
//
//	size := audpcm.OptimalChunkSize(dec.Format(), dec.SourceSize())
//	for {
//	    fc, err := dec.NextChunk(size)
//	    if err == io.EOF {
//	        break
//	    }
//	    res := dec.ProcessChunk(fc)
//	    if res.Err != nil {
//	        log.Fatal(res.Err)
//	    }
//	    // use res.Chunks
//	}
//
// # Errors
//
// Every failure wraps one of the audio.Err values, so callers can test
// for a kind with errors.Is. LastErrorMessage keeps the text of the most
// recent failure for callers that only want a string.
package audpcm
