// Package streambuffer is a byte-oriented ring with no message framing:
// Write blocks while there is no room for at least one byte, Read blocks
// while the buffer is empty. Unlike mailboxqueue or messagebuffer, a
// single call may transfer fewer bytes than asked for.
package streambuffer

import "statekernel/kernel"

// Buffer is a fixed-capacity byte ring.
type Buffer struct {
	k *kernel.Kernel

	data []byte
	head int
	tail int
	n    int

	writeWaiters kernel.WaitQueue
	readWaiters  kernel.WaitQueue
}

// New creates a buffer with the given byte capacity.
func New(k *kernel.Kernel, capacity int) *Buffer {
	return &Buffer{k: k, data: make([]byte, capacity)}
}

func (b *Buffer) free() int { return len(b.data) - b.n }

func (b *Buffer) copyIn(p []byte) int {
	n := len(p)
	if n > b.free() {
		n = b.free()
	}
	for i := 0; i < n; i++ {
		b.data[b.tail] = p[i]
		b.tail = (b.tail + 1) % len(b.data)
	}
	b.n += n
	return n
}

func (b *Buffer) copyOut(p []byte) int {
	n := len(p)
	if n > b.n {
		n = b.n
	}
	for i := 0; i < n; i++ {
		p[i] = b.data[b.head]
		b.head = (b.head + 1) % len(b.data)
	}
	b.n -= n
	return n
}

// Write blocks indefinitely until at least one byte of p can be queued,
// returning the number written.
func (b *Buffer) Write(t *kernel.Task, p []byte) (int, kernel.Result) {
	return b.WriteFor(t, p, kernel.INFINITE)
}

// WriteFor blocks for at most delay ticks until at least one byte of p
// can be queued.
func (b *Buffer) WriteFor(t *kernel.Task, p []byte, delay kernel.Tick) (int, kernel.Result) {
	if len(p) == 0 {
		return 0, kernel.Success
	}
	b.k.Lock()
	defer b.k.Unlock()

	if n := b.copyIn(p); n > 0 {
		b.k.WakeOne(&b.readWaiters, kernel.Success)
		return n, kernel.Success
	}
	if delay == kernel.IMMEDIATE {
		return 0, kernel.Full
	}
	start := b.k.NowLocked()
	for {
		remaining, ok := b.k.Remaining(start, delay)
		if !ok {
			return 0, kernel.Full
		}
		res := b.k.Wait(t, &b.writeWaiters, remaining)
		if res != kernel.Success {
			return 0, res
		}
		if n := b.copyIn(p); n > 0 {
			b.k.WakeOne(&b.readWaiters, kernel.Success)
			return n, kernel.Success
		}
	}
}

// Read blocks indefinitely until at least one byte is available,
// returning the number read into p.
func (b *Buffer) Read(t *kernel.Task, p []byte) (int, kernel.Result) {
	return b.ReadFor(t, p, kernel.INFINITE)
}

// ReadFor blocks for at most delay ticks until at least one byte is
// available.
func (b *Buffer) ReadFor(t *kernel.Task, p []byte, delay kernel.Tick) (int, kernel.Result) {
	if len(p) == 0 {
		return 0, kernel.Success
	}
	b.k.Lock()
	defer b.k.Unlock()

	if n := b.copyOut(p); n > 0 {
		b.k.WakeOne(&b.writeWaiters, kernel.Success)
		return n, kernel.Success
	}
	if delay == kernel.IMMEDIATE {
		return 0, kernel.Empty
	}
	start := b.k.NowLocked()
	for {
		remaining, ok := b.k.Remaining(start, delay)
		if !ok {
			return 0, kernel.Empty
		}
		res := b.k.Wait(t, &b.readWaiters, remaining)
		if res != kernel.Success {
			return 0, res
		}
		if n := b.copyOut(p); n > 0 {
			b.k.WakeOne(&b.writeWaiters, kernel.Success)
			return n, kernel.Success
		}
	}
}

// Kill wakes every waiter, writer and reader, with Stopped.
func (b *Buffer) Kill() {
	b.k.Kill(&b.writeWaiters)
	b.k.Kill(&b.readWaiters)
}
