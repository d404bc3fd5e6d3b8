// Package trace is an in-memory ring of scheduling events, fed from a
// port's context-switch hook and consumed by cmd/kmonitor. It observes
// the kernel; it is never part of its control flow.
package trace

import (
	"sync"

	"statekernel/kernel"
)

// Event records one ready-list head change.
type Event struct {
	Tick kernel.Tick
	From string
	To   string
}

// Ring is a fixed-capacity circular log of Events, safe for concurrent
// recording and snapshotting.
type Ring struct {
	mu     sync.Mutex
	events []Event
	head   int
	n      int
}

// NewRing creates a ring holding at most capacity events.
func NewRing(capacity int) *Ring {
	return &Ring{events: make([]Event, capacity)}
}

// Record appends one event, overwriting the oldest once full. It reads
// the tick without taking the kernel lock, because the context-switch
// hook that feeds it runs with that lock already held.
func (r *Ring) Record(k *kernel.Kernel, from, to *kernel.Task) {
	ev := Event{Tick: k.NowLocked()}
	if from != nil {
		ev.From = from.Name()
	}
	if to != nil {
		ev.To = to.Name()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	size := len(r.events)
	if size == 0 {
		return
	}
	idx := (r.head + r.n) % size
	r.events[idx] = ev
	if r.n < size {
		r.n++
	} else {
		r.head = (r.head + 1) % size
	}
}

// Snapshot returns a copy of the ring's contents, oldest first.
func (r *Ring) Snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.events[(r.head+i)%len(r.events)]
	}
	return out
}
