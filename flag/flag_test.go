package flag

import (
	"testing"

	"statekernel/kernel"
)

func TestTakeSatisfiedAny(t *testing.T) {
	k := kernel.New(kernel.Config{})
	f := New(k, 0x1)

	started := make(chan struct{})
	type outcome struct {
		got uint32
		res kernel.Result
	}
	resCh := make(chan outcome, 1)
	task := kernel.NewTask("taker", 1, func(self *kernel.Task) {
		close(started)
		got, res := f.Take(self, 0x3, false)
		resCh <- outcome{got, res}
	})
	k.Start(task)
	<-started
	<-task.Done()

	out := <-resCh
	if out.res != kernel.Success || out.got != 0x1 {
		t.Fatalf("Take = (%#x, %v), want (0x1, Success)", out.got, out.res)
	}
}

func TestWaitAllBlocksUntilBothBitsSet(t *testing.T) {
	k := kernel.New(kernel.Config{})
	f := New(k, 0)

	started := make(chan struct{})
	resCh := make(chan kernel.Result, 1)
	task := kernel.NewTask("waiter", 1, func(self *kernel.Task) {
		close(started)
		_, res := f.Wait(self, 0x3, true)
		resCh <- res
	})
	k.Start(task)
	<-started

	f.Give(0x1)
	select {
	case r := <-resCh:
		t.Fatalf("Wait returned early with %v after partial Give", r)
	default:
	}

	f.Give(0x2)
	if r := <-resCh; r != kernel.Success {
		t.Fatalf("Wait = %v, want Success", r)
	}
}
