// SPDX-License-Identifier: EPL-2.0

package chunked

// State is the lifecycle of a Decoder.
//
//	Uninitialized -> Initialized -> Decoding <-> Seeking
//	                                Decoding -> Finished
//
// Error is reached from any state and only Close is useful after it.
type State int

const (
	Uninitialized State = iota
	Initialized
	Decoding
	Seeking
	Finished
	Error
)

var stateNames = [...]string{"uninitialized", "initialized", "decoding", "seeking", "finished", "error"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
