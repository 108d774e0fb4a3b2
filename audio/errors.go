// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"io/fs"
	"os/exec"
)

// Error is the uniform error set every backend failure is translated into.
type Error int

const (
	ErrInvalidInput Error = iota + 1
	ErrUnknownFormat
	ErrContainerInvalid
	ErrNoAudioTrack
	ErrUnsupportedCodec
	ErrBackendUnavailable
	ErrDecodeFailed
	ErrOutOfMemory
	ErrSeekFailed
	ErrDesynchronized

	// ErrNeedMoreData is returned by unit decoders when the buffer does
	// not yet hold a complete unit. It never escapes the chunked decoder.
	ErrNeedMoreData Error = 100
)

var errorMessages = [...]string{
	0:                     "no error",
	ErrInvalidInput:       "invalid input",
	ErrUnknownFormat:      "unknown audio format",
	ErrContainerInvalid:   "invalid container structure",
	ErrNoAudioTrack:       "no audio track found",
	ErrUnsupportedCodec:   "unsupported codec",
	ErrBackendUnavailable: "decode backend unavailable",
	ErrDecodeFailed:       "decode failed",
	ErrOutOfMemory:        "out of memory",
	ErrSeekFailed:         "seek failed",
	ErrDesynchronized:     "stream desynchronized",
}

func (e Error) Error() string {
	if e == ErrNeedMoreData {
		return "need more data"
	}
	if e < 0 || int(e) >= len(errorMessages) {
		return "unknown error"
	}
	return errorMessages[e]
}

// Code returns the negative status code used at the functional boundary.
func (e Error) Code() int {
	return -int(e)
}

// Fatal reports whether the error leaves a chunked decoder unusable.
func (e Error) Fatal() bool {
	switch e {
	case ErrDecodeFailed, ErrNeedMoreData, ErrSeekFailed:
		return false
	}
	return true
}

// Classify translates any error into the uniform set. Errors that already
// carry an Error value keep it; known library and system errors are mapped
// and everything else counts as a decode failure.
func Classify(err error) Error {
	if err == nil {
		return 0
	}

	var e Error
	if errors.As(err, &e) {
		return e
	}

	switch {
	case errors.Is(err, exec.ErrNotFound):
		return ErrBackendUnavailable
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ErrInvalidInput
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrDecodeFailed
	}

	return ErrDecodeFailed
}
