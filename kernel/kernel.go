// Package kernel implements the scheduling core: a priority-ordered
// ready list, a shared delay/timer list, and the unified object-wait-queue
// model every blocking primitive in this repository is built from.
//
// A Task runs on its own goroutine, started by Kernel.Start. All
// kernel-visible state — the ready list, every object's wait queue, the
// timer list, mutex ownership — is guarded by one lock (Kernel.Lock), the
// same "big kernel lock" shape the original design describes, so the
// orderings and priority-inheritance recomputation it specifies hold
// exactly regardless of how many task goroutines happen to be runnable at
// once. What this core does not claim is true preemption of a task's own
// code: between the kernel calls a task makes, its goroutine runs under
// the normal Go scheduler like any other. A "current" task (Cur) is a
// derived value, always the ready list's head; reading it is a statement
// about scheduling intent (who the kernel would dispatch next), not a
// guarantee that no other task's code is concurrently executing.
package kernel

import "sync"

// Config sizes and wires one Kernel instance.
type Config struct {
	// Port is the platform seam; nil disables context-switch tracing
	// and leaves the tick-less comparator path unused.
	Port Port
	// Tickless selects the hardware-comparator timer path (TimerHandler)
	// over the periodic SysTick path. Most host simulations leave this
	// false.
	Tickless bool
	// IdlePriority is the priority of the always-ready anchor task that
	// keeps the ready list from ever reporting "no task" (matches the
	// original kernel's static IDLE task).
	IdlePriority uint8
	// RoundRobin rotates the ready-list head to the tail of its priority
	// band on every SysTick, giving equal-priority tasks a fair rotation
	// through "current" without requiring each to call Yield.
	RoundRobin bool
}

// Kernel owns the scheduling state for one simulated CPU.
type Kernel struct {
	mu sync.Mutex

	cfg  Config
	tick Tick

	ready  WaitQueue
	timers timerList

	idle *Task
}

// New builds a Kernel and seats its idle anchor task.
func New(cfg Config) *Kernel {
	k := &Kernel{cfg: cfg}
	k.idle = &Task{name: "idle", basicPrio: cfg.IdlePriority, prio: cfg.IdlePriority, state: StateReady}
	k.ready.insert(k.idle)
	return k
}

// Lock acquires the big kernel lock. Wait, WakeOne, WakeAll and every
// primitive built on them must be called with it held, the same
// convention pthread_cond_wait uses for its mutex argument.
func (k *Kernel) Lock() { k.mu.Lock() }

// Unlock releases the big kernel lock.
func (k *Kernel) Unlock() { k.mu.Unlock() }

// Now returns the current tick count.
func (k *Kernel) Now() Tick {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.tick
}

// NowLocked returns the current tick count without locking, for callers
// that already hold the kernel lock (sync.Mutex isn't reentrant, so Now
// would deadlock them).
func (k *Kernel) NowLocked() Tick { return k.tick }

// Remaining computes how much of a delay started at start is left, as of
// now. ok is false once it has fully elapsed. Adapters that may wake a
// blocked task spuriously (a shared wait queue woken for a condition the
// particular waiter doesn't satisfy) use this to re-block for the true
// remaining time instead of restarting the full delay. Callers hold the
// kernel lock already.
func (k *Kernel) Remaining(start, delay Tick) (remaining Tick, ok bool) {
	if delay == INFINITE {
		return INFINITE, true
	}
	e := k.tick.Since(start)
	if e >= delay {
		return 0, false
	}
	return delay - e, true
}

// TaskState returns t's current lifecycle state.
func (k *Kernel) TaskState(t *Task) State {
	k.mu.Lock()
	defer k.mu.Unlock()
	return t.state
}

// ReadyOrder returns the names of every task on the ready list, from
// head to tail, for assertions and tracing. The idle anchor is included.
func (k *Kernel) ReadyOrder() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	var out []string
	for t := k.ready.front(); t != nil; t = t.queueNext {
		out = append(out, t.name)
	}
	return out
}

// Sleep blocks the calling task for delay ticks with no guarding object,
// the plain timed-sleep case of Wait.
func (k *Kernel) Sleep(t *Task, delay Tick) Result {
	k.mu.Lock()
	defer k.mu.Unlock()
	if delay == IMMEDIATE {
		return Success
	}
	return k.Wait(t, nil, delay)
}

// Block is Wait with kernel-lock management, for callers with nothing
// else to check atomically with the block itself. Most adapters instead
// call Lock, inspect their own state, and call Wait directly so the
// predicate check and the block happen under the same critical section.
func (k *Kernel) Block(t *Task, q *WaitQueue, delay Tick) Result {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.Wait(t, q, delay)
}

// SetTick forcibly resynchronizes the tick count. A tick-less port uses
// this at boot to seed the clock from the free-running hardware counter;
// tests use it to place the clock at a specific point to exercise
// wraparound without driving millions of SysTick calls.
func (k *Kernel) SetTick(t Tick) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tick = t
}

// Cur returns the task at the head of the ready list: the one the
// scheduler currently intends to run.
func (k *Kernel) Cur() *Task {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.ready.front()
}

// Start hands a caller-allocated Task to the kernel, inserts it into the
// ready list, and spawns the single goroutine that runs its body. The
// kernel never allocates or starts a task on its own initiative.
func (k *Kernel) Start(t *Task) {
	k.mu.Lock()
	t.k = k
	t.state = StateReady
	prevCur := k.ready.front()
	k.ready.insert(t)
	k.notifySwitch(prevCur)
	k.mu.Unlock()

	go func() {
		t.fn(t)
		k.mu.Lock()
		k.ready.unlink(t)
		t.state = StateStopped
		k.mu.Unlock()
		close(t.done)
	}()
}

// Wait blocks the calling task t, optionally on object wait queue q (nil
// for a plain timed sleep), for at most delay ticks. Must be called with
// the kernel lock held; it releases the lock while parked and reacquires
// it before returning, exactly like a condition-variable wait. A delay of
// IMMEDIATE returns Timeout at once without blocking.
func (k *Kernel) Wait(t *Task, q *WaitQueue, delay Tick) Result {
	if delay == IMMEDIATE {
		return Timeout
	}
	prevCur := k.ready.front()
	k.ready.unlink(t)
	k.notifySwitch(prevCur)
	if q != nil {
		q.insert(t)
	}
	t.state = StateDelayed
	if delay != INFINITE {
		link := &timerLink{task: t, start: k.tick, delay: delay}
		t.link = link
		k.timers.insert(k.tick, link)
	}
	return k.park(t)
}

// park releases the kernel lock, blocks the calling goroutine on t's wake
// channel, and reacquires the lock before returning the delivered result.
func (k *Kernel) park(t *Task) Result {
	k.mu.Unlock()
	res := <-t.wake
	k.mu.Lock()
	return res
}

// Yield rotates t to the tail of its priority band if it is currently
// ready, implementing the dispatch sequence's "outgoing task, still
// READY, rotates to the tail of its band" step for an explicit
// cooperative yield point. A no-op for a task that is not ready.
func (k *Kernel) Yield(t *Task) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if t.state != StateReady {
		return
	}
	prevCur := k.ready.front()
	k.ready.reinsert(t)
	k.notifySwitch(prevCur)
}

// WakeOne wakes the highest-priority task blocked on q, if any, and
// returns it. Returning the woken task (rather than a bool) lets WakeAll
// loop on it, matching the original design's one-predicate-does-both-jobs
// shape for its wakeup primitive.
func (k *Kernel) WakeOne(q *WaitQueue, res Result) *Task {
	t := q.front()
	if t == nil {
		return nil
	}
	k.wake(t, res)
	return t
}

// Kill wakes every task blocked on q with Stopped, for an object being
// reset or torn down while tasks wait on it.
func (k *Kernel) Kill(q *WaitQueue) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.WakeAll(q, Stopped)
}

// WakeAll wakes every task blocked on q.
func (k *Kernel) WakeAll(q *WaitQueue, res Result) {
	for k.WakeOne(q, res) != nil {
	}
}

// wake detaches t from its wait queue and pending timer (if any), moves
// it to the ready list, and delivers res to the parked goroutine.
func (k *Kernel) wake(t *Task, res Result) {
	if t.link != nil {
		k.timers.remove(t.link)
		t.link = nil
	}
	if t.queue != nil {
		t.queue.unlink(t)
	}
	prevCur := k.ready.front()
	t.state = StateReady
	k.ready.insert(t)
	k.notifySwitch(prevCur)
	t.result = res
	t.wake <- res
}

// notifySwitch tells the port when the ready list's head has changed,
// purely so a host monitor or board port can trace/react to it; it has
// no bearing on which goroutine the Go runtime actually schedules next.
func (k *Kernel) notifySwitch(prevCur *Task) {
	if k.cfg.Port == nil {
		return
	}
	if newCur := k.ready.front(); newCur != prevCur {
		k.cfg.Port.CtxSwitch(prevCur, newCur)
	}
}

// SysTick advances the tick count by one and fires any timers or
// timed-out waits whose deadline has now passed. Called by the platform
// port on every timer interrupt in tick mode.
func (k *Kernel) SysTick() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.tick++
	k.fireExpired()
	if k.cfg.RoundRobin {
		k.rotateHead()
	}
}

// rotateHead rotates the ready list's current head to the tail of its
// priority band, the round-robin half of the dispatch sequence's
// outgoing-task handling.
func (k *Kernel) rotateHead() {
	head := k.ready.front()
	if head == nil || head == k.idle {
		return
	}
	k.ready.reinsert(head)
	k.notifySwitch(head)
}

// TimerHandler is the tick-less equivalent of SysTick: invoked when the
// hardware comparator matches, it resynchronizes the tick count from the
// port's free-running counter and fires whatever is now due. SysTime is
// read once, after the lock is taken; the counter is not read again
// after the comparator has been re-armed.
func (k *Kernel) TimerHandler() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.cfg.Port != nil {
		k.tick = k.cfg.Port.SysTime()
	}
	k.fireExpired()
	k.armNextComparator()
}

func (k *Kernel) fireExpired() {
	for e := k.timers.head; e != nil; {
		next := e.next
		if !e.expired(k.tick) {
			break
		}
		k.timers.remove(e)
		switch {
		case e.task != nil:
			t := e.task
			t.link = nil
			k.wake(t, Timeout)
		case e.timer != nil:
			k.fireTimer(e)
		}
		e = next
	}
	if k.cfg.Tickless {
		k.armNextComparator()
	}
}

func (k *Kernel) fireTimer(e *timerLink) {
	tm := e.timer
	tm.fn()
	if tm.period > 0 {
		e.start = k.tick
		e.delay = tm.period
		k.timers.insert(k.tick, e)
		return
	}
	tm.link = nil
}

func (k *Kernel) armNextComparator() {
	if k.cfg.Port == nil {
		return
	}
	if k.timers.head == nil {
		k.cfg.Port.TmrStop()
		return
	}
	k.cfg.Port.TmrStart(k.timers.head.remaining(k.tick))
}
