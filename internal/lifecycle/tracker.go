package lifecycle

import (
	"context"
	"sync"
)

// Tracker holds the state of one panel's requests.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	phase  Phase
	last   Outcome
	cancel context.CancelFunc
}

// Phase returns the current phase.
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

// Busy reports whether a request is in flight.
func (t *Tracker) Busy() bool {
	return t.Phase() == Busy
}

// Last returns the most recent accepted outcome.
func (t *Tracker) Last() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Start moves to Busy and returns a child context for the request along
// with its sequence number. ok is false, and nothing changes, when a
// request is already in flight.
func (t *Tracker) Start(parent context.Context) (ctx context.Context, seq uint64, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == Busy {
		return nil, 0, false
	}
	t.seq++
	ctx, t.cancel = context.WithCancel(parent)
	t.phase = Busy
	return ctx, t.seq, true
}

// Finish records o if it belongs to the current request. It returns false
// for stale outcomes, which are dropped.
func (t *Tracker) Finish(o Outcome) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if o.Seq != t.seq || t.phase != Busy {
		return false
	}
	t.release()
	t.phase = o.Phase
	t.last = o
	return true
}

// Reject records a failure that never reached the network, such as a
// validation error. It is ignored while busy.
func (t *Tracker) Reject(o Outcome) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == Busy {
		return false
	}
	t.phase = o.Phase
	t.last = o
	return true
}

// Cancel aborts the in-flight request, if any, and returns to Idle.
// The canceled request's outcome will be stale when it arrives.
func (t *Tracker) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase != Busy {
		return false
	}
	t.release()
	t.seq++
	t.phase = Idle
	t.last = Outcome{Phase: Failed, Kind: KindCanceled, Text: CanceledText}
	return true
}

// Reset cancels anything in flight and forgets the last outcome.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.release()
	t.seq++
	t.phase = Idle
	t.last = Outcome{}
}

func (t *Tracker) release() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}
