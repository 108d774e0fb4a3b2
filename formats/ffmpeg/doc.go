// SPDX-License-Identifier: EPL-2.0

// Package ffmpeg decodes any input the ffmpeg tools understand. It runs
// ffprobe to discover the first audio stream and then streams 32-bit float
// PCM out of an ffmpeg process.
//
// The tools are looked up on PATH. When they are missing every call fails
// with audio.ErrBackendUnavailable.
package ffmpeg
