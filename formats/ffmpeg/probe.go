// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/ik5/audpcm/audio"
)

// Metadata describes the first audio stream as reported by ffprobe.
type Metadata struct {
	SampleRate int
	Channels   int
	Codec      string
	// Duration in seconds, 0 when unknown.
	Duration float64
	Bitrate  int
}

// TotalFrames estimates the length from the reported duration.
func (m Metadata) TotalFrames() int64 {
	return int64(m.Duration * float64(m.SampleRate))
}

// Probe runs ffprobe over data.
func (c Config) Probe(ctx context.Context, data []byte) (Metadata, error) {
	cmd := exec.CommandContext(ctx, c.FFprobePath, probeArgs()...)
	cmd.Stdin = bytes.NewReader(data)

	out, err := cmd.Output()
	if err != nil {
		return Metadata{}, wrapRun("ffprobe", err)
	}

	return parseProbe(out)
}

func parseProbe(out []byte) (Metadata, error) {
	var probe struct {
		Streams []struct {
			CodecType  string `json:"codec_type"`
			CodecName  string `json:"codec_name"`
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
			Duration   string `json:"duration"`
			BitRate    string `json:"bit_rate"`
		} `json:"streams"`
	}

	if err := json.Unmarshal(out, &probe); err != nil {
		return Metadata{}, fmt.Errorf("%w: parsing ffprobe output: %w", audio.ErrDecodeFailed, err)
	}
	if len(probe.Streams) == 0 || probe.Streams[0].CodecType != "audio" {
		return Metadata{}, fmt.Errorf("%w: ffprobe reported no audio stream", audio.ErrNoAudioTrack)
	}

	s := probe.Streams[0]
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate <= 0 {
		return Metadata{}, fmt.Errorf("%w: sample rate %q", audio.ErrUnsupportedCodec, s.SampleRate)
	}
	if s.Channels <= 0 {
		return Metadata{}, fmt.Errorf("%w: %d channels", audio.ErrUnsupportedCodec, s.Channels)
	}

	// optional fields
	duration, _ := strconv.ParseFloat(s.Duration, 64)
	bitrate, _ := strconv.Atoi(s.BitRate)

	return Metadata{
		SampleRate: rate,
		Channels:   s.Channels,
		Codec:      s.CodecName,
		Duration:   duration,
		Bitrate:    bitrate,
	}, nil
}
