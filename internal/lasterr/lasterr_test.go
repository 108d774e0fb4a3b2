// SPDX-License-Identifier: EPL-2.0

package lasterr

import (
	"errors"
	"sync"
	"testing"
)

func TestSet(t *testing.T) {
	first := errors.New("first")
	if got := Set(first); got != first {
		t.Fatalf("Set returned %v, want the same error", got)
	}
	if got := Message(); got != "first" {
		t.Errorf("Message = %q, want %q", got, "first")
	}

	if Set(nil) != nil {
		t.Error("Set(nil) returned an error")
	}
	if got := Message(); got != "first" {
		t.Errorf("nil overwrote the slot: %q", got)
	}

	Set(errors.New("second"))
	if got := Message(); got != "second" {
		t.Errorf("Message = %q, want %q", got, "second")
	}
}

func TestSet_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				Set(errors.New("boom"))
				_ = Message()
			}
		})
	}
	wg.Wait()

	if got := Message(); got != "boom" {
		t.Errorf("Message = %q", got)
	}
}
