package kernel

import (
	"runtime"
	"testing"
	"time"
)

// awaitState polls (via runtime.Gosched, not a timer) until task reaches
// want or the deadline passes, the same retry-loop shape the corpus uses
// for testing concurrent handoffs.
func awaitState(t *testing.T, k *Kernel, task *Task, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if k.TaskState(task) == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("task %s: state %v not reached before deadline", task.Name(), want)
		}
		runtime.Gosched()
	}
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// S1 — Delay.
func TestScenarioDelay(t *testing.T) {
	k := New(Config{})
	proceed := make(chan struct{})
	resCh := make(chan Result, 1)
	a := NewTask("A", 1, func(self *Task) {
		<-proceed
		resCh <- k.Sleep(self, 10)
	})
	k.Start(a)

	for i := 0; i < 100; i++ {
		k.SysTick()
	}
	close(proceed)
	awaitState(t, k, a, StateDelayed)

	for i := 0; i < 9; i++ {
		k.SysTick()
		select {
		case r := <-resCh:
			t.Fatalf("A resumed early at tick %d with %v", k.Now(), r)
		default:
		}
	}
	k.SysTick() // tick 110
	if r := <-resCh; r != Timeout {
		t.Fatalf("A resumed with %v, want Timeout", r)
	}
}

// S2 — Priority preemption.
func TestScenarioPriorityPreemption(t *testing.T) {
	k := New(Config{})
	lBlock := make(chan struct{})
	l := NewTask("L", 1, func(self *Task) { <-lBlock })
	k.Start(l)
	awaitState(t, k, l, StateReady)

	for i := 0; i < 50; i++ {
		k.SysTick()
	}

	hBlock := make(chan struct{})
	h := NewTask("H", 5, func(self *Task) { <-hBlock })
	k.Start(h)
	awaitState(t, k, h, StateReady)

	order := k.ReadyOrder()
	if order[0] != "H" {
		t.Fatalf("ready order = %v, want H first", order)
	}
	if idx := indexOf(order, "L"); idx <= indexOf(order, "H") {
		t.Fatalf("ready order = %v, want L behind H", order)
	}
	close(lBlock)
	close(hBlock)
}

// S3 — FIFO among equals / round robin.
func TestScenarioRoundRobin(t *testing.T) {
	k := New(Config{RoundRobin: true})
	blockA, blockB, blockC := make(chan struct{}), make(chan struct{}), make(chan struct{})
	a := NewTask("A", 3, func(self *Task) { <-blockA })
	b := NewTask("B", 3, func(self *Task) { <-blockB })
	c := NewTask("C", 3, func(self *Task) { <-blockC })
	k.Start(a)
	awaitState(t, k, a, StateReady)
	k.Start(b)
	awaitState(t, k, b, StateReady)
	k.Start(c)
	awaitState(t, k, c, StateReady)

	want := [][3]string{{"A", "B", "C"}, {"B", "C", "A"}, {"C", "A", "B"}, {"A", "B", "C"}}
	for i, w := range want {
		order := k.ReadyOrder()
		got := [3]string{order[0], order[1], order[2]}
		if got != w {
			t.Fatalf("round %d: ready order = %v, want %v", i, got, w)
		}
		k.SysTick()
	}
	close(blockA)
	close(blockB)
	close(blockC)
}

// S4 — Priority inheritance.
func TestScenarioPriorityInheritance(t *testing.T) {
	k := New(Config{})
	m := k.NewMutex()

	acquired := make(chan struct{})
	release := make(chan struct{})
	l := NewTask("L", 1, func(self *Task) {
		if r := m.Wait(self); r != Success {
			t.Errorf("L acquire: %v", r)
		}
		close(acquired)
		<-release
		m.Give(self)
	})
	k.Start(l)
	<-acquired

	hRes := make(chan Result, 1)
	h := NewTask("H", 5, func(self *Task) {
		hRes <- m.Wait(self)
	})
	k.Start(h)
	awaitState(t, k, h, StateDelayed)

	if got := l.Priority(); got != 5 {
		t.Fatalf("L effective priority = %d, want 5", got)
	}

	close(release)
	if r := <-hRes; r != Success {
		t.Fatalf("H acquire: %v", r)
	}
	<-l.Done()
	if got := l.Priority(); got != 1 {
		t.Fatalf("L effective priority after release = %d, want 1", got)
	}
}

// S5 — Kill with waiters.
func TestScenarioKillWithWaiters(t *testing.T) {
	k := New(Config{})
	var q WaitQueue

	w1started, w2started := make(chan struct{}), make(chan struct{})
	w1res, w2res := make(chan Result, 1), make(chan Result, 1)
	// hold keeps both tasks alive (and so on the ready list) until the
	// ready order has been checked.
	hold := make(chan struct{})
	w1 := NewTask("W1", 2, func(self *Task) {
		close(w1started)
		w1res <- k.Block(self, &q, INFINITE)
		<-hold
	})
	w2 := NewTask("W2", 4, func(self *Task) {
		close(w2started)
		w2res <- k.Block(self, &q, INFINITE)
		<-hold
	})
	k.Start(w1)
	<-w1started
	awaitState(t, k, w1, StateDelayed)
	k.Start(w2)
	<-w2started
	awaitState(t, k, w2, StateDelayed)

	k.Kill(&q)

	if r := <-w1res; r != Stopped {
		t.Fatalf("W1 woke with %v, want Stopped", r)
	}
	if r := <-w2res; r != Stopped {
		t.Fatalf("W2 woke with %v, want Stopped", r)
	}
	order := k.ReadyOrder()
	if order[0] != "W2" {
		t.Fatalf("ready order = %v, want W2 at head", order)
	}
	close(hold)
}

// S6 — Tick-less wrap.
type fakePort struct{ now Tick }

func (p *fakePort) ISRLock() uintptr        { return 0 }
func (p *fakePort) ISRUnlock(uintptr)       {}
func (p *fakePort) CtxSwitch(_, _ *Task)    {}
func (p *fakePort) ClrLock()                {}
func (p *fakePort) SetLock()                {}
func (p *fakePort) SetStack(_ *Task)        {}
func (p *fakePort) TmrStart(Tick)           {}
func (p *fakePort) TmrStop()                {}
func (p *fakePort) TmrForce()               {}
func (p *fakePort) ISRInside() bool         { return false }
func (p *fakePort) SysTime() Tick           { return p.now }

func TestScenarioTicklessWrap(t *testing.T) {
	port := &fakePort{now: 0xFFFFFFF0}
	k := New(Config{Tickless: true, Port: port})
	k.SetTick(port.now)

	started := make(chan struct{})
	resCh := make(chan Result, 1)
	a := NewTask("A", 1, func(self *Task) {
		close(started)
		resCh <- k.Block(self, nil, 0x20)
	})
	k.Start(a)
	<-started
	awaitState(t, k, a, StateDelayed)

	port.now = 0x00000010
	k.TimerHandler()

	if r := <-resCh; r != Timeout {
		t.Fatalf("A woke with %v, want Timeout", r)
	}
}

// Invariant 1: the ready list is sorted non-increasingly by priority and
// ends at the idle anchor.
func TestInvariantReadyListOrdering(t *testing.T) {
	k := New(Config{})
	blocks := make([]chan struct{}, 0)
	prios := []uint8{2, 7, 4, 4, 1}
	for i, p := range prios {
		bl := make(chan struct{})
		blocks = append(blocks, bl)
		task := NewTask(string(rune('A'+i)), p, func(self *Task) { <-bl })
		k.Start(task)
		awaitState(t, k, task, StateReady)
	}
	order := k.ReadyOrder()
	if order[len(order)-1] != "idle" {
		t.Fatalf("ready list does not end at idle: %v", order)
	}
	// Priorities 2,7,4,4,1 for A..E: highest first, D behind C (FIFO).
	want := []string{"B", "C", "D", "A", "E", "idle"}
	if len(order) != len(want) {
		t.Fatalf("ready order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ready order = %v, want %v", order, want)
		}
	}
	for _, bl := range blocks {
		close(bl)
	}
}

// Invariant 7: wake order matches priority order; ties resolve FIFO.
func TestInvariantWakeOrder(t *testing.T) {
	k := New(Config{})
	var q WaitQueue

	type waiter struct {
		name    string
		prio    uint8
		started chan struct{}
		res     chan Result
	}
	specs := []waiter{
		{"low", 2, make(chan struct{}), make(chan Result, 1)},
		{"mid1", 5, make(chan struct{}), make(chan Result, 1)},
		{"mid2", 5, make(chan struct{}), make(chan Result, 1)},
		{"high", 9, make(chan struct{}), make(chan Result, 1)},
	}
	var woke []string
	var order []*Task
	for _, s := range specs {
		s := s
		task := NewTask(s.name, s.prio, func(self *Task) {
			close(s.started)
			s.res <- k.Block(self, &q, INFINITE)
		})
		k.Start(task)
		<-s.started
		awaitState(t, k, task, StateDelayed)
		order = append(order, task)
	}

	k.Lock()
	for {
		w := k.WakeOne(&q, Success)
		if w == nil {
			break
		}
		woke = append(woke, w.Name())
	}
	k.Unlock()

	want := []string{"high", "mid1", "mid2", "low"}
	if len(woke) != len(want) {
		t.Fatalf("woke %v, want %v", woke, want)
	}
	for i := range want {
		if woke[i] != want[i] {
			t.Fatalf("woke %v, want %v", woke, want)
		}
	}
	for _, s := range specs {
		<-s.res
	}
}
