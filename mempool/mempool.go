// Package mempool is a fixed-size block allocator over a single
// caller-sized backing array: every block is the same size, and a task
// blocks in Take when the pool is exhausted until another task gives a
// block back.
package mempool

import "statekernel/kernel"

// Pool hands out limit blocks of size bytes each.
type Pool struct {
	k *kernel.Kernel

	size  int
	store []byte
	free  []int // indices of unused blocks, used as a stack

	waiters kernel.WaitQueue
}

// Block is a pool allocation. Its Data slice is valid until Give.
type Block struct {
	Data []byte
	idx  int
}

// New creates a pool of limit blocks of size bytes, all free.
func New(k *kernel.Kernel, limit, size int) *Pool {
	p := &Pool{k: k, size: size, store: make([]byte, limit*size)}
	p.free = make([]int, limit)
	for i := range p.free {
		p.free[i] = i
	}
	return p
}

func (p *Pool) blockAt(i int) Block {
	return Block{Data: p.store[i*p.size : (i+1)*p.size], idx: i}
}

// Take attempts to allocate a block without blocking.
func (p *Pool) Take(t *kernel.Task) (Block, kernel.Result) {
	return p.WaitFor(t, kernel.IMMEDIATE)
}

// Wait allocates a block, blocking indefinitely while the pool is
// exhausted.
func (p *Pool) Wait(t *kernel.Task) (Block, kernel.Result) {
	return p.WaitFor(t, kernel.INFINITE)
}

// WaitFor allocates a block, blocking for at most delay ticks.
func (p *Pool) WaitFor(t *kernel.Task, delay kernel.Tick) (Block, kernel.Result) {
	p.k.Lock()
	defer p.k.Unlock()

	start := p.k.NowLocked()
	for {
		if n := len(p.free); n > 0 {
			i := p.free[n-1]
			p.free = p.free[:n-1]
			return p.blockAt(i), kernel.Success
		}
		remaining, ok := p.k.Remaining(start, delay)
		if !ok || remaining == kernel.IMMEDIATE {
			return Block{}, kernel.Empty
		}
		res := p.k.Wait(t, &p.waiters, remaining)
		if res != kernel.Success {
			return Block{}, res
		}
	}
}

// Give returns a block previously obtained from this pool, waking one
// waiter if any.
func (p *Pool) Give(b Block) {
	p.k.Lock()
	defer p.k.Unlock()
	p.free = append(p.free, b.idx)
	p.k.WakeOne(&p.waiters, kernel.Success)
}

// Kill wakes every waiter with Stopped.
func (p *Pool) Kill() {
	p.k.Kill(&p.waiters)
}
