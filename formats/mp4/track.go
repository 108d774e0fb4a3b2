// SPDX-License-Identifier: EPL-2.0

package mp4

import (
	"fmt"
	"math/bits"

	"github.com/ik5/audpcm/audio"
)

// Track is the first usable audio track of a file.
type Track struct {
	Media       MediaHeader
	Description SampleDescription
	Table       SampleTable
	Valid       bool
}

// TotalFrames estimates the decoded length from the media duration.
func (t Track) TotalFrames() int64 {
	if t.Media.Timescale == 0 || t.Description.SampleRate == 0 {
		return 0
	}
	return int64(scale(t.Media.Duration, uint64(t.Description.SampleRate), uint64(t.Media.Timescale)))
}

// StreamInfo maps the track onto the shared stream description.
func (t Track) StreamInfo() audio.StreamInfo {
	return audio.StreamInfo{
		SampleRate:    t.Description.SampleRate,
		Channels:      t.Description.Channels,
		BitsPerSample: t.Description.BitsPerSample,
		TotalFrames:   t.TotalFrames(),
		Bitrate:       int(t.Description.AvgBitrate),
		Timescale:     t.Media.Timescale,
		Duration:      t.Media.Duration,
	}
}

// FindAudioTrack returns the first trak under moov whose handler is sound
// and whose media boxes all parse. moov is the moov payload.
func FindAudioTrack(moov []byte) (Track, error) {
	for s := range Boxes(moov) {
		if s.Type != TypeTrak {
			continue
		}
		if t, err := parseTrack(s.Payload(moov)); err == nil {
			return t, nil
		}
	}
	return Track{}, audio.ErrNoAudioTrack
}

func parseTrack(trak []byte) (Track, error) {
	mdia, ok := findPath(trak, TypeMdia)
	if !ok {
		return Track{}, ErrUnexpectedBox
	}

	s, ok := FindBox(mdia, TypeHdlr)
	if !ok {
		return Track{}, ErrUnexpectedBox
	}
	handler, err := ParseHandlerReference(s.Bytes(mdia))
	if err != nil {
		return Track{}, err
	}
	if handler != HandlerSound {
		return Track{}, audio.ErrNoAudioTrack
	}

	var t Track

	s, ok = FindBox(mdia, TypeMdhd)
	if !ok {
		return Track{}, ErrUnexpectedBox
	}
	if t.Media, err = ParseMediaHeader(s.Bytes(mdia)); err != nil {
		return Track{}, err
	}

	stbl, ok := findPath(mdia, TypeMinf, TypeStbl)
	if !ok {
		return Track{}, ErrUnexpectedBox
	}
	s, ok = FindBox(stbl, TypeStsd)
	if !ok {
		return Track{}, ErrUnexpectedBox
	}
	if t.Description, err = ParseSampleDescription(s.Bytes(stbl)); err != nil {
		return Track{}, err
	}
	t.Table = ParseSampleTable(stbl)
	t.Valid = true

	return t, nil
}

// ValidateContainer checks ftyp, moov and the audio track of a file (or
// of its leading bytes, as long as they cover moov).
func ValidateContainer(b []byte) (Track, error) {
	s, ok := FindBox(b, TypeFtyp)
	if !ok {
		return Track{}, ErrMissingFtyp
	}
	if err := ValidateFtyp(s.Bytes(b)); err != nil {
		return Track{}, err
	}

	s, ok = FindBox(b, TypeMoov)
	if !ok {
		return Track{}, ErrMissingMoov
	}

	t, err := FindAudioTrack(s.Payload(b))
	if err != nil {
		return Track{}, err
	}
	if !t.Description.IsSupported {
		return Track{}, fmt.Errorf("%w %q", audio.ErrUnsupportedCodec, t.Description.Codec)
	}

	return t, nil
}

// scale computes v*num/den without intermediate overflow.
func scale(v, num, den uint64) uint64 {
	hi, lo := bits.Mul64(v, num)
	if hi >= den {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, den)
	return q
}
