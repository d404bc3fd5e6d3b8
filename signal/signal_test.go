package signal

import (
	"testing"

	"statekernel/kernel"
)

func TestTakeWithoutPendingSignal(t *testing.T) {
	k := kernel.New(kernel.Config{})
	s := New(k, Clear)

	started := make(chan struct{})
	type outcome struct {
		got uint32
		res kernel.Result
	}
	resCh := make(chan outcome, 1)
	task := kernel.NewTask("taker", 1, func(self *kernel.Task) {
		close(started)
		got, res := s.Take(self, 0x1)
		resCh <- outcome{got, res}
	})
	k.Start(task)
	<-started
	<-task.Done()

	out := <-resCh
	if out.res != kernel.Timeout {
		t.Fatalf("Take with nothing pending = %v, want Timeout", out.res)
	}
}

func TestGiveWakesWaiterAndClears(t *testing.T) {
	k := kernel.New(kernel.Config{})
	s := New(k, Clear)

	started := make(chan struct{})
	resCh := make(chan uint32, 1)
	task := kernel.NewTask("waiter", 1, func(self *kernel.Task) {
		close(started)
		got, _ := s.Wait(self, 0x1)
		resCh <- got
	})
	k.Start(task)
	<-started

	s.Give(0)
	if got := <-resCh; got != 0x1 {
		t.Fatalf("Wait woke with %#x, want 0x1", got)
	}
	probe := kernel.NewTask("probe", 1, func(*kernel.Task) {})
	if _, res := s.Take(probe, 0x1); res != kernel.Timeout {
		t.Fatalf("bit still pending after Clear-type delivery")
	}
}

func TestProtectTypeLeavesBitSet(t *testing.T) {
	k := kernel.New(kernel.Config{})
	s := New(k, Protect)

	started := make(chan struct{})
	resCh := make(chan uint32, 1)
	task := kernel.NewTask("waiter", 1, func(self *kernel.Task) {
		close(started)
		got, _ := s.Wait(self, 0x1)
		resCh <- got
	})
	k.Start(task)
	<-started

	s.Give(0)
	<-resCh
	probe := kernel.NewTask("probe", 1, func(*kernel.Task) {})
	if got, res := s.Take(probe, 0x1); res != kernel.Success || got != 0x1 {
		t.Fatalf("Take after Protect delivery = (%#x, %v), want (0x1, Success)", got, res)
	}
}
