// Package flag is an event-flag group: a bitmask a task can wait on
// either ANY or ALL of, and another task or ISR sets or clears.
package flag

import "statekernel/kernel"

// Flag is a 32-bit event flag group.
type Flag struct {
	k *kernel.Kernel

	bits    uint32
	waiters kernel.WaitQueue
}

// New creates a flag group with the given initial bits set.
func New(k *kernel.Kernel, init uint32) *Flag {
	return &Flag{k: k, bits: init}
}

func satisfied(bits, mask uint32, all bool) bool {
	if all {
		return bits&mask == mask
	}
	return bits&mask != 0
}

// Take checks mask without blocking.
func (f *Flag) Take(t *kernel.Task, mask uint32, all bool) (uint32, kernel.Result) {
	return f.WaitFor(t, mask, all, kernel.IMMEDIATE)
}

// Wait blocks indefinitely until mask is satisfied.
func (f *Flag) Wait(t *kernel.Task, mask uint32, all bool) (uint32, kernel.Result) {
	return f.WaitFor(t, mask, all, kernel.INFINITE)
}

// WaitFor blocks for at most delay ticks until mask is satisfied under
// the ANY (all=false) or ALL (all=true) rule, returning the bits that
// matched.
func (f *Flag) WaitFor(t *kernel.Task, mask uint32, all bool, delay kernel.Tick) (uint32, kernel.Result) {
	f.k.Lock()
	defer f.k.Unlock()

	start := f.k.NowLocked()
	for {
		if satisfied(f.bits, mask, all) {
			got := f.bits & mask
			return got, kernel.Success
		}
		remaining, ok := f.k.Remaining(start, delay)
		if !ok || remaining == kernel.IMMEDIATE {
			return 0, kernel.Timeout
		}
		// Every waiter shares one queue regardless of its own mask, so a
		// wake may be spurious for this waiter; loop and re-check.
		res := f.k.Wait(t, &f.waiters, remaining)
		if res != kernel.Success {
			return 0, res
		}
	}
}

// Give ORs bits into the group and wakes every waiter to re-check its
// own condition.
func (f *Flag) Give(bits uint32) {
	f.k.Lock()
	defer f.k.Unlock()
	f.bits |= bits
	f.k.WakeAll(&f.waiters, kernel.Success)
}

// Clear ANDs bits out of the group.
func (f *Flag) Clear(bits uint32) {
	f.k.Lock()
	defer f.k.Unlock()
	f.bits &^= bits
}

// Kill wakes every waiter with Stopped.
func (f *Flag) Kill() {
	f.k.Kill(&f.waiters)
}
