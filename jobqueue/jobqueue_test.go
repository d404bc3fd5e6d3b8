package jobqueue

import (
	"testing"

	"statekernel/kernel"
)

func TestTrySendThenFetchRunsTheJob(t *testing.T) {
	k := kernel.New(kernel.Config{})
	q := New(k, 2)

	ran := make(chan struct{}, 1)
	if r := q.TrySend(func() { close(ran) }); r != kernel.Success {
		t.Fatalf("TrySend = %v, want Success", r)
	}

	started := make(chan struct{})
	resCh := make(chan kernel.Result, 1)
	worker := kernel.NewTask("worker", 1, func(self *kernel.Task) {
		close(started)
		job, res := q.Fetch(self)
		if res == kernel.Success {
			job()
		}
		resCh <- res
	})
	k.Start(worker)
	<-started
	if r := <-resCh; r != kernel.Success {
		t.Fatalf("Fetch = %v, want Success", r)
	}
	<-ran
}

func TestFetchBlocksUntilAJobArrives(t *testing.T) {
	k := kernel.New(kernel.Config{})
	q := New(k, 2)

	started := make(chan struct{})
	resCh := make(chan kernel.Result, 1)
	worker := kernel.NewTask("worker", 1, func(self *kernel.Task) {
		close(started)
		_, res := q.Fetch(self)
		resCh <- res
	})
	k.Start(worker)
	<-started

	select {
	case r := <-resCh:
		t.Fatalf("Fetch returned early with %v", r)
	default:
	}

	q.TrySend(func() {})
	if r := <-resCh; r != kernel.Success {
		t.Fatalf("Fetch = %v, want Success", r)
	}
}
