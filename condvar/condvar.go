// Package condvar is a condition variable paired with a caller-supplied
// kernel.Mutex: Wait atomically releases the mutex and blocks, then
// reacquires it before returning.
package condvar

import "statekernel/kernel"

// CondVar is a condition variable. The zero value is not usable; use New.
type CondVar struct {
	k       *kernel.Kernel
	waiters kernel.WaitQueue
}

// New creates a condition variable bound to k.
func New(k *kernel.Kernel) *CondVar {
	return &CondVar{k: k}
}

// Wait atomically releases m and blocks indefinitely, reacquiring m
// before returning.
func (c *CondVar) Wait(t *kernel.Task, m *kernel.Mutex) kernel.Result {
	return c.WaitFor(t, m, kernel.INFINITE)
}

// WaitFor is Wait bounded to delay ticks.
func (c *CondVar) WaitFor(t *kernel.Task, m *kernel.Mutex, delay kernel.Tick) kernel.Result {
	c.k.Lock()
	c.k.ReleaseLocked(m, t)
	res := c.k.Wait(t, &c.waiters, delay)
	c.k.Unlock()

	// Reacquiring may itself block if another task grabbed m first; that
	// mirrors a real condition variable, where the wake and the mutex
	// re-lock are two separate steps, not one atomic handoff.
	c.k.Lock()
	reacquire := c.k.AcquireLocked(m, t, kernel.INFINITE)
	c.k.Unlock()
	if res != kernel.Success {
		return res
	}
	return reacquire
}

// Signal wakes one waiter.
func (c *CondVar) Signal() {
	c.k.Lock()
	defer c.k.Unlock()
	c.k.WakeOne(&c.waiters, kernel.Success)
}

// Broadcast wakes every waiter. SignalAll is an alias, matching the
// original header's own note that the two names describe one operation.
func (c *CondVar) Broadcast() {
	c.k.Lock()
	defer c.k.Unlock()
	c.k.WakeAll(&c.waiters, kernel.Success)
}

// SignalAll is an alias for Broadcast.
func (c *CondVar) SignalAll() { c.Broadcast() }
