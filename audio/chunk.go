// SPDX-License-Identifier: EPL-2.0

package audio

// FileChunk is one span of encoded input. Data is borrowed for the duration
// of a single ProcessChunk call. Position is the byte offset of Data[0] in
// the logical source.
type FileChunk struct {
	Data     []byte
	Position int64
	IsLast   bool
}

// Chunk is one unit of decoded output. StartSample counts frames from the
// start of the decoded stream.
type Chunk struct {
	Samples     []float32
	StartSample int64
	IsLast      bool
}

// Status of a ProcessChunk call.
type Status int

const (
	StatusSuccess Status = iota
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// ChunkResult is either fully populated or carries only Err.
type ChunkResult struct {
	Chunks []Chunk
	Status Status
	Err    error
}

// Frames sums the frames of all chunks for the given channel count.
func (r ChunkResult) Frames(channels int) int64 {
	if channels <= 0 {
		return 0
	}
	var n int64
	for _, c := range r.Chunks {
		n += int64(len(c.Samples) / channels)
	}
	return n
}
