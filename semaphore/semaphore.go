// Package semaphore is a counting semaphore, a thin adapter over the
// kernel's wait-queue primitive: Wait blocks while the count is zero,
// Give increments it and wakes one waiter.
package semaphore

import "statekernel/kernel"

// Semaphore is a counting semaphore with an optional upper bound. A
// Semaphore created with limit 0 is unbounded.
type Semaphore struct {
	k *kernel.Kernel

	count uint
	limit uint

	waiters kernel.WaitQueue
}

// New creates a semaphore with the given initial count and upper bound.
// limit of 0 means unbounded.
func New(k *kernel.Kernel, init, limit uint) *Semaphore {
	return &Semaphore{k: k, count: init, limit: limit}
}

// Take attempts to decrement the semaphore without blocking.
func (s *Semaphore) Take(t *kernel.Task) kernel.Result {
	return s.WaitFor(t, kernel.IMMEDIATE)
}

// Wait decrements the semaphore, blocking indefinitely while it is zero.
func (s *Semaphore) Wait(t *kernel.Task) kernel.Result {
	return s.WaitFor(t, kernel.INFINITE)
}

// WaitFor decrements the semaphore, blocking for at most delay ticks.
func (s *Semaphore) WaitFor(t *kernel.Task, delay kernel.Tick) kernel.Result {
	s.k.Lock()
	defer s.k.Unlock()

	start := s.k.NowLocked()
	for {
		if s.count > 0 {
			s.count--
			return kernel.Success
		}
		remaining, ok := s.k.Remaining(start, delay)
		if !ok {
			return kernel.Timeout
		}
		if remaining == kernel.IMMEDIATE {
			return kernel.Timeout
		}
		res := s.k.Wait(t, &s.waiters, remaining)
		if res != kernel.Success {
			return res
		}
	}
}

// Give increments the semaphore and wakes one waiter. Returns Full if
// the semaphore has a limit and is already at it.
func (s *Semaphore) Give() kernel.Result {
	s.k.Lock()
	defer s.k.Unlock()
	if s.limit != 0 && s.count >= s.limit {
		return kernel.Full
	}
	s.count++
	s.k.WakeOne(&s.waiters, kernel.Success)
	return kernel.Success
}

// Kill wakes every waiter with Stopped, leaving the semaphore itself
// usable (compare Delete, which a caller layers on top by discarding the
// Semaphore value after Kill).
func (s *Semaphore) Kill() {
	s.k.Kill(&s.waiters)
}
