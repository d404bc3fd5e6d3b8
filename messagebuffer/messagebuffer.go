// Package messagebuffer is a byte ring carrying variable-length framed
// messages, each stored as a 4-byte length prefix followed by payload.
// Send blocks while the next frame can't fit, Receive blocks while the
// buffer holds no complete frame.
package messagebuffer

import (
	"encoding/binary"

	"statekernel/kernel"
)

const headerSize = 4

// Buffer is a fixed-capacity framed byte ring.
type Buffer struct {
	k *kernel.Kernel

	data []byte
	head int
	tail int
	n    int // bytes currently used

	sendWaiters kernel.WaitQueue
	recvWaiters kernel.WaitQueue
}

// New creates a buffer with the given byte capacity, which bounds the
// total size of header-plus-payload for every frame it can ever hold.
func New(k *kernel.Kernel, capacity int) *Buffer {
	return &Buffer{k: k, data: make([]byte, capacity)}
}

func (b *Buffer) free() int { return len(b.data) - b.n }

func (b *Buffer) writeRaw(p []byte) {
	for _, c := range p {
		b.data[b.tail] = c
		b.tail = (b.tail + 1) % len(b.data)
	}
	b.n += len(p)
}

func (b *Buffer) peek(n int) []byte {
	out := make([]byte, n)
	idx := b.head
	for i := range out {
		out[i] = b.data[idx]
		idx = (idx + 1) % len(b.data)
	}
	return out
}

func (b *Buffer) discard(n int) {
	b.head = (b.head + n) % len(b.data)
	b.n -= n
}

func (b *Buffer) tryPut(msg []byte) bool {
	need := headerSize + len(msg)
	if need > b.free() {
		return false
	}
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(msg)))
	b.writeRaw(hdr[:])
	b.writeRaw(msg)
	return true
}

func (b *Buffer) tryGet() ([]byte, bool) {
	if b.n < headerSize {
		return nil, false
	}
	size := binary.LittleEndian.Uint32(b.peek(headerSize))
	if b.n < headerSize+int(size) {
		return nil, false
	}
	b.discard(headerSize)
	msg := b.peek(int(size))
	b.discard(int(size))
	return msg, true
}

// Send blocks indefinitely until msg fits.
func (b *Buffer) Send(t *kernel.Task, msg []byte) kernel.Result {
	return b.SendFor(t, msg, kernel.INFINITE)
}

// TrySend attempts Send without blocking.
func (b *Buffer) TrySend(t *kernel.Task, msg []byte) kernel.Result {
	return b.SendFor(t, msg, kernel.IMMEDIATE)
}

// SendFor blocks for at most delay ticks until msg fits in the buffer.
// Returns Full immediately, regardless of delay, if msg can never fit
// because it exceeds the buffer's total capacity.
func (b *Buffer) SendFor(t *kernel.Task, msg []byte, delay kernel.Tick) kernel.Result {
	if headerSize+len(msg) > len(b.data) {
		return kernel.Full
	}
	b.k.Lock()
	defer b.k.Unlock()

	if b.tryPut(msg) {
		b.k.WakeOne(&b.recvWaiters, kernel.Success)
		return kernel.Success
	}
	if delay == kernel.IMMEDIATE {
		return kernel.Full
	}
	start := b.k.NowLocked()
	for {
		remaining, ok := b.k.Remaining(start, delay)
		if !ok {
			return kernel.Full
		}
		res := b.k.Wait(t, &b.sendWaiters, remaining)
		if res != kernel.Success {
			return res
		}
		if b.tryPut(msg) {
			b.k.WakeOne(&b.recvWaiters, kernel.Success)
			return kernel.Success
		}
	}
}

// Receive blocks indefinitely until a frame is available.
func (b *Buffer) Receive(t *kernel.Task) ([]byte, kernel.Result) {
	return b.ReceiveFor(t, kernel.INFINITE)
}

// TryReceive attempts Receive without blocking.
func (b *Buffer) TryReceive(t *kernel.Task) ([]byte, kernel.Result) {
	return b.ReceiveFor(t, kernel.IMMEDIATE)
}

// ReceiveFor blocks for at most delay ticks until a complete frame is
// available, returning its payload.
func (b *Buffer) ReceiveFor(t *kernel.Task, delay kernel.Tick) ([]byte, kernel.Result) {
	b.k.Lock()
	defer b.k.Unlock()

	if msg, ok := b.tryGet(); ok {
		b.k.WakeOne(&b.sendWaiters, kernel.Success)
		return msg, kernel.Success
	}
	if delay == kernel.IMMEDIATE {
		return nil, kernel.Empty
	}
	start := b.k.NowLocked()
	for {
		remaining, ok := b.k.Remaining(start, delay)
		if !ok {
			return nil, kernel.Empty
		}
		res := b.k.Wait(t, &b.recvWaiters, remaining)
		if res != kernel.Success {
			return nil, res
		}
		if msg, ok := b.tryGet(); ok {
			b.k.WakeOne(&b.sendWaiters, kernel.Success)
			return msg, kernel.Success
		}
	}
}

// Kill wakes every waiter, sender and receiver, with Stopped.
func (b *Buffer) Kill() {
	b.k.Kill(&b.sendWaiters)
	b.k.Kill(&b.recvWaiters)
}
