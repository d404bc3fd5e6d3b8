// Package jobqueue is a fixed-capacity ring of deferred-work callbacks:
// a producer (typically a timer or port callback running without a
// task context of its own) pushes a func(), and a worker task blocks in
// Fetch until one is available and runs it outside that context.
package jobqueue

import "statekernel/kernel"

// Queue is a ring of limit pending jobs.
type Queue struct {
	k *kernel.Kernel

	buf  []func()
	head int
	tail int
	n    int

	sendWaiters kernel.WaitQueue
	recvWaiters kernel.WaitQueue
}

// New creates a queue holding up to limit pending jobs.
func New(k *kernel.Kernel, limit int) *Queue {
	return &Queue{k: k, buf: make([]func(), limit)}
}

func (q *Queue) tryPut(job func()) bool {
	if q.n == len(q.buf) {
		return false
	}
	q.buf[q.tail] = job
	q.tail = (q.tail + 1) % len(q.buf)
	q.n++
	return true
}

func (q *Queue) tryGet() (func(), bool) {
	if q.n == 0 {
		return nil, false
	}
	job := q.buf[q.head]
	q.buf[q.head] = nil
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return job, true
}

// Send blocks indefinitely until there is room to queue job.
func (q *Queue) Send(t *kernel.Task, job func()) kernel.Result {
	return q.SendFor(t, job, kernel.INFINITE)
}

// TrySend attempts Send without blocking. This is the form an ISR or
// timer callback uses, since it has no task to block with.
func (q *Queue) TrySend(job func()) kernel.Result {
	q.k.Lock()
	defer q.k.Unlock()
	if q.tryPut(job) {
		q.k.WakeOne(&q.recvWaiters, kernel.Success)
		return kernel.Success
	}
	return kernel.Full
}

// SendFor blocks for at most delay ticks until there is room to queue
// job.
func (q *Queue) SendFor(t *kernel.Task, job func(), delay kernel.Tick) kernel.Result {
	q.k.Lock()
	defer q.k.Unlock()

	if q.tryPut(job) {
		q.k.WakeOne(&q.recvWaiters, kernel.Success)
		return kernel.Success
	}
	if delay == kernel.IMMEDIATE {
		return kernel.Full
	}
	start := q.k.NowLocked()
	for {
		remaining, ok := q.k.Remaining(start, delay)
		if !ok {
			return kernel.Full
		}
		res := q.k.Wait(t, &q.sendWaiters, remaining)
		if res != kernel.Success {
			return res
		}
		if q.tryPut(job) {
			q.k.WakeOne(&q.recvWaiters, kernel.Success)
			return kernel.Success
		}
	}
}

// Fetch blocks indefinitely for a job and returns it; the caller runs
// it.
func (q *Queue) Fetch(t *kernel.Task) (func(), kernel.Result) {
	return q.FetchFor(t, kernel.INFINITE)
}

// FetchFor blocks for at most delay ticks for a job.
func (q *Queue) FetchFor(t *kernel.Task, delay kernel.Tick) (func(), kernel.Result) {
	q.k.Lock()
	defer q.k.Unlock()

	if job, ok := q.tryGet(); ok {
		q.k.WakeOne(&q.sendWaiters, kernel.Success)
		return job, kernel.Success
	}
	if delay == kernel.IMMEDIATE {
		return nil, kernel.Empty
	}
	start := q.k.NowLocked()
	for {
		remaining, ok := q.k.Remaining(start, delay)
		if !ok {
			return nil, kernel.Empty
		}
		res := q.k.Wait(t, &q.recvWaiters, remaining)
		if res != kernel.Success {
			return nil, res
		}
		if job, ok := q.tryGet(); ok {
			q.k.WakeOne(&q.sendWaiters, kernel.Success)
			return job, kernel.Success
		}
	}
}

// Kill wakes every waiter, producer and worker, with Stopped.
func (q *Queue) Kill() {
	q.k.Kill(&q.sendWaiters)
	q.k.Kill(&q.recvWaiters)
}
