// SPDX-License-Identifier: EPL-2.0

// Package lasterr holds the process-wide text of the most recent failure
// returned across the public API.
package lasterr

import "sync"

var slot struct {
	mu  sync.Mutex
	msg string
}

// Set stores err as the most recent failure and returns it unchanged. A
// nil err leaves the slot alone.
func Set(err error) error {
	if err == nil {
		return nil
	}
	slot.mu.Lock()
	slot.msg = err.Error()
	slot.mu.Unlock()
	return err
}

// Message returns the stored text, or "" before the first failure.
func Message() string {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.msg
}
