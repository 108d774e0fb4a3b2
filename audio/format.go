// SPDX-License-Identifier: EPL-2.0

package audio

// Format tags a container/codec family. The numeric values are stable and
// are part of the public contract.
type Format int

const (
	Unknown Format = iota
	MP3
	FLAC
	WAV
	// Ogg is Ogg Vorbis, and the generic tag for an Ogg stream whose
	// codec could not be identified.
	Ogg
	Opus
	MP4
	AIFF
)

var formatNames = [...]string{
	Unknown: "unknown",
	MP3:     "mp3",
	FLAC:    "flac",
	WAV:     "wav",
	Ogg:     "ogg",
	Opus:    "opus",
	MP4:     "mp4",
	AIFF:    "aiff",
}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return formatNames[Unknown]
	}
	return formatNames[f]
}

// ParseFormat maps a name such as "mp3" or "m4a" to its Format.
func ParseFormat(name string) Format {
	switch name {
	case "mp3":
		return MP3
	case "flac":
		return FLAC
	case "wav", "wave":
		return WAV
	case "ogg", "oga", "vorbis":
		return Ogg
	case "opus":
		return Opus
	case "mp4", "m4a", "m4b", "aac":
		return MP4
	case "aiff", "aif":
		return AIFF
	}
	return Unknown
}
