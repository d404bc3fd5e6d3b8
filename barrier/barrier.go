// Package barrier is an N-party rendezvous: the Nth task to call Wait
// releases the other N-1 and the barrier resets for reuse.
package barrier

import "statekernel/kernel"

// Barrier holds limit parties until all have arrived.
type Barrier struct {
	k     *kernel.Kernel
	limit uint
	count uint

	waiters kernel.WaitQueue
}

// New creates a barrier requiring limit arrivals per round.
func New(k *kernel.Kernel, limit uint) *Barrier {
	return &Barrier{k: k, limit: limit}
}

// Wait blocks until limit tasks (including the caller) have called Wait,
// then releases all of them and resets the barrier for the next round.
func (b *Barrier) Wait(t *kernel.Task) kernel.Result {
	return b.WaitFor(t, kernel.INFINITE)
}

// WaitFor is Wait bounded to delay ticks.
func (b *Barrier) WaitFor(t *kernel.Task, delay kernel.Tick) kernel.Result {
	b.k.Lock()
	defer b.k.Unlock()

	b.count++
	if b.count < b.limit {
		res := b.k.Wait(t, &b.waiters, delay)
		if res != kernel.Success {
			b.count--
		}
		return res
	}
	b.count = 0
	b.k.WakeAll(&b.waiters, kernel.Success)
	return kernel.Success
}

// Kill wakes every waiting party with Stopped and resets the count.
func (b *Barrier) Kill() {
	b.k.Lock()
	b.count = 0
	b.k.Unlock()
	b.k.Kill(&b.waiters)
}
