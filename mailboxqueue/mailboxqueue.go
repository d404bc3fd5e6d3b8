// Package mailboxqueue is a fixed-capacity FIFO ring of fixed-length
// messages: Send blocks while the ring is full, Receive blocks while it
// is empty.
package mailboxqueue

import "statekernel/kernel"

// Queue is a ring buffer of limit slots, each size bytes.
type Queue struct {
	k *kernel.Kernel

	size int
	buf  [][]byte
	head int
	tail int
	n    int

	sendWaiters kernel.WaitQueue
	recvWaiters kernel.WaitQueue
}

// New creates a queue of limit slots of size bytes each.
func New(k *kernel.Kernel, limit, size int) *Queue {
	buf := make([][]byte, limit)
	for i := range buf {
		buf[i] = make([]byte, size)
	}
	return &Queue{k: k, size: size, buf: buf}
}

func (q *Queue) tryPut(data []byte) bool {
	if q.n == len(q.buf) {
		return false
	}
	copy(q.buf[q.tail], data)
	q.tail = (q.tail + 1) % len(q.buf)
	q.n++
	return true
}

func (q *Queue) tryGet(out []byte) bool {
	if q.n == 0 {
		return false
	}
	copy(out, q.buf[q.head])
	q.head = (q.head + 1) % len(q.buf)
	q.n--
	return true
}

// Send blocks indefinitely until there is room for data.
func (q *Queue) Send(t *kernel.Task, data []byte) kernel.Result {
	return q.SendFor(t, data, kernel.INFINITE)
}

// TrySend attempts Send without blocking.
func (q *Queue) TrySend(t *kernel.Task, data []byte) kernel.Result {
	return q.SendFor(t, data, kernel.IMMEDIATE)
}

// SendFor blocks for at most delay ticks until there is room for data,
// a slice that must be exactly the queue's message size.
func (q *Queue) SendFor(t *kernel.Task, data []byte, delay kernel.Tick) kernel.Result {
	if len(data) != q.size {
		panic("mailboxqueue: wrong message size")
	}
	q.k.Lock()
	defer q.k.Unlock()

	if q.tryPut(data) {
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
		if q.tryPut(data) {
			q.k.WakeOne(&q.recvWaiters, kernel.Success)
			return kernel.Success
		}
	}
}

// Receive blocks indefinitely until a message is available.
func (q *Queue) Receive(t *kernel.Task, out []byte) kernel.Result {
	return q.ReceiveFor(t, out, kernel.INFINITE)
}

// TryReceive attempts Receive without blocking.
func (q *Queue) TryReceive(t *kernel.Task, out []byte) kernel.Result {
	return q.ReceiveFor(t, out, kernel.IMMEDIATE)
}

// ReceiveFor blocks for at most delay ticks until a message is
// available, copying it into out.
func (q *Queue) ReceiveFor(t *kernel.Task, out []byte, delay kernel.Tick) kernel.Result {
	if len(out) != q.size {
		panic("mailboxqueue: wrong message size")
	}
	q.k.Lock()
	defer q.k.Unlock()

	if q.tryGet(out) {
		q.k.WakeOne(&q.sendWaiters, kernel.Success)
		return kernel.Success
	}
	if delay == kernel.IMMEDIATE {
		return kernel.Empty
	}
	start := q.k.NowLocked()
	for {
		remaining, ok := q.k.Remaining(start, delay)
		if !ok {
			return kernel.Empty
		}
		res := q.k.Wait(t, &q.recvWaiters, remaining)
		if res != kernel.Success {
			return res
		}
		if q.tryGet(out) {
			q.k.WakeOne(&q.sendWaiters, kernel.Success)
			return kernel.Success
		}
	}
}

// Kill wakes every waiter, sender and receiver, with Stopped.
func (q *Queue) Kill() {
	q.k.Kill(&q.sendWaiters)
	q.k.Kill(&q.recvWaiters)
}
