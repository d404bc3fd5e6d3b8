// Package signal is a group bitmask of pending signal numbers that any
// number of tasks may wait on: Give sets a bit and wakes every waiter to
// re-check its mask, Wait blocks for any bit in a caller-supplied mask.
package signal

import "statekernel/kernel"

// Type selects what happens to the bits that satisfied a Wait.
type Type uint8

const (
	// Clear removes the satisfying bits from the group once delivered.
	Clear Type = iota
	// Protect leaves the bits set after delivery; a caller must Clear
	// them itself.
	Protect
)

// Signal is a group of up to 32 signal numbers.
type Signal struct {
	k   *kernel.Kernel
	typ Type

	bits    uint32
	waiters kernel.WaitQueue
}

// New creates a signal group of the given clear/protect type.
func New(k *kernel.Kernel, typ Type) *Signal {
	return &Signal{k: k, typ: typ}
}

// Take checks mask without blocking.
func (s *Signal) Take(t *kernel.Task, mask uint32) (uint32, kernel.Result) {
	return s.WaitFor(t, mask, kernel.IMMEDIATE)
}

// Wait blocks indefinitely for any bit in mask to be given.
func (s *Signal) Wait(t *kernel.Task, mask uint32) (uint32, kernel.Result) {
	return s.WaitFor(t, mask, kernel.INFINITE)
}

// WaitFor blocks for at most delay ticks for any bit in mask, returning
// the bits that were pending.
func (s *Signal) WaitFor(t *kernel.Task, mask uint32, delay kernel.Tick) (uint32, kernel.Result) {
	s.k.Lock()
	defer s.k.Unlock()

	start := s.k.NowLocked()
	for {
		if got := s.bits & mask; got != 0 {
			if s.typ == Clear {
				s.bits &^= got
			}
			return got, kernel.Success
		}
		remaining, ok := s.k.Remaining(start, delay)
		if !ok || remaining == kernel.IMMEDIATE {
			return 0, kernel.Timeout
		}
		res := s.k.Wait(t, &s.waiters, remaining)
		if res != kernel.Success {
			return 0, res
		}
	}
}

// Give sets sigNo and wakes every waiter to re-check its own mask.
func (s *Signal) Give(sigNo uint) {
	s.k.Lock()
	defer s.k.Unlock()
	s.bits |= 1 << sigNo
	s.k.WakeAll(&s.waiters, kernel.Success)
}

// Clear removes sigNo from the pending set without delivering it.
func (s *Signal) Clear(sigNo uint) {
	s.k.Lock()
	defer s.k.Unlock()
	s.bits &^= 1 << sigNo
}

// Kill wakes every waiter with Stopped.
func (s *Signal) Kill() {
	s.k.Kill(&s.waiters)
}
