// Package throttle provides a trailing-edge call limiter: the first trigger
// opens a fixed window, further triggers within the window replace the pending
// call, and exactly one call runs when the window closes. No call is ever made
// on the leading edge.
package throttle

import (
	"sync"
	"time"
)

type Throttle struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending func()
	stopped bool
}

func New(window time.Duration) *Throttle {
	return &Throttle{window: window}
}

// Trigger schedules fn to run when the current window closes, replacing any
// previously pending call. If no window is open, one is opened now.
func (t *Throttle) Trigger(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}

	t.pending = fn
	if t.timer == nil {
		t.timer = time.AfterFunc(t.window, t.fire)
	}
}

func (t *Throttle) fire() {
	t.mu.Lock()
	fn := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels any pending call and disables the throttle permanently. It is
// called when the owning pad is deleted.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
