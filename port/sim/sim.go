// Package sim is the host-side platform port: it drives a Kernel's tick
// source from real wall-clock time and turns the kernel's context-switch
// and timer hooks into callbacks a host harness (tests, cmd/kmonitor) can
// observe, the same role hal.hostTime plays for the HAL's Time interface.
package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"statekernel/kernel"
)

var _ kernel.Port = (*Port)(nil)

// Port is a kernel.Port implementation backed by a real-time ticker.
type Port struct {
	k       *kernel.Kernel
	tickDur time.Duration

	stop chan struct{}
	wg   sync.WaitGroup

	isrDepth int32

	mu       sync.Mutex
	onSwitch func(from, to *kernel.Task)
}

// New creates a simulated port that advances one kernel tick every
// tickDur of wall-clock time once Run is called.
func New(tickDur time.Duration) *Port {
	return &Port{tickDur: tickDur, stop: make(chan struct{})}
}

// Bind attaches k as the kernel this port drives. Call once, before Run,
// after constructing k with Config.Port set to this Port.
func (p *Port) Bind(k *kernel.Kernel) { p.k = k }

// OnSwitch installs a hook invoked on every CtxSwitch, for tracing or a
// monitor UI. Safe to call before or while Run is active.
func (p *Port) OnSwitch(fn func(from, to *kernel.Task)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onSwitch = fn
}

// Run starts the ticker goroutine. It accumulates elapsed wall-clock time
// and steps the kernel's tick count the way hal.hostTime accumulates
// elapsed time into discrete ticks, rather than trusting a bare
// time.Ticker not to coalesce missed ticks under load.
func (p *Port) Run() {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		last := time.Now()
		var acc time.Duration
		ticker := time.NewTicker(p.tickDur)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case now := <-ticker.C:
				acc += now.Sub(last)
				last = now
				for acc >= p.tickDur {
					acc -= p.tickDur
					p.k.SysTick()
				}
			}
		}
	}()
}

// Stop halts the ticker goroutine and waits for it to exit.
func (p *Port) Stop() {
	close(p.stop)
	p.wg.Wait()
}

// ISRLock/ISRUnlock model interrupt masking as a reentrancy counter: this
// host simulation has no real interrupts to mask, only the invariant
// that nested lock/unlock pairs balance.
func (p *Port) ISRLock() uintptr {
	return uintptr(atomic.AddInt32(&p.isrDepth, 1))
}

func (p *Port) ISRUnlock(uintptr) {
	atomic.AddInt32(&p.isrDepth, -1)
}

func (p *Port) CtxSwitch(from, to *kernel.Task) {
	p.mu.Lock()
	fn := p.onSwitch
	p.mu.Unlock()
	if fn != nil {
		fn(from, to)
	}
}

func (p *Port) ClrLock()                {}
func (p *Port) SetLock()                {}
func (p *Port) SetStack(*kernel.Task)   {}
func (p *Port) TmrStart(kernel.Tick)    {}
func (p *Port) TmrStop()                {}
func (p *Port) TmrForce()               {}
func (p *Port) ISRInside() bool         { return atomic.LoadInt32(&p.isrDepth) > 0 }
func (p *Port) SysTime() kernel.Tick    { return p.k.Now() }
