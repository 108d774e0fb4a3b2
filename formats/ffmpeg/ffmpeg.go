// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/ik5/audpcm/audio"
)

// Config locates the tools and bounds how long they may run.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	// Timeout applies to the probe and to the whole decode. 0 disables it.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		Timeout:     5 * time.Minute,
	}
}

var (
	lookupOnce sync.Once
	lookupErr  error
)

// Available reports whether ffmpeg and ffprobe are on PATH. The lookup runs
// once per process; later calls return the cached answer.
func Available() bool {
	return lookup() == nil
}

func lookup() error {
	lookupOnce.Do(func() {
		for _, tool := range []string{"ffmpeg", "ffprobe"} {
			if _, err := exec.LookPath(tool); err != nil {
				lookupErr = unavailable(tool, err)
				return
			}
		}
	})
	return lookupErr
}

func unavailable(tool string, err error) error {
	return fmt.Errorf("%w: %s: %w", audio.ErrBackendUnavailable, tool, err)
}

// wrapRun classifies a failed tool run.
func wrapRun(tool string, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return unavailable(tool, err)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s: %w, stderr: %s", audio.ErrDecodeFailed, tool, err, exitErr.Stderr)
	}
	return fmt.Errorf("%w: %s: %w", audio.ErrDecodeFailed, tool, err)
}

func probeArgs() []string {
	return []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		"pipe:0",
	}
}

// decodeArgs keeps the native rate and channel layout of the stream.
func decodeArgs(m Metadata) []string {
	return []string{
		"-loglevel", "error",
		"-i", "pipe:0",
		"-map", "0:a:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ar", strconv.Itoa(m.SampleRate),
		"-ac", strconv.Itoa(m.Channels),
		"pipe:1",
	}
}
