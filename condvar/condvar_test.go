package condvar

import (
	"runtime"
	"testing"

	"statekernel/kernel"
)

func awaitState(k *kernel.Kernel, task *kernel.Task, want kernel.State) {
	for i := 0; i < 100000; i++ {
		if k.TaskState(task) == want {
			return
		}
		runtime.Gosched()
	}
}

func TestSignalWakesOneWaiterWithMutexReacquired(t *testing.T) {
	k := kernel.New(kernel.Config{})
	m := k.NewMutex()
	c := New(k)

	started := make(chan struct{})
	resCh := make(chan kernel.Result, 1)
	checked := make(chan struct{})
	task := kernel.NewTask("waiter", 1, func(self *kernel.Task) {
		m.Wait(self)
		close(started)
		res := c.Wait(self, m)
		resCh <- res
		// Hold the mutex until the test has looked at its owner.
		<-checked
		m.Give(self)
	})
	k.Start(task)
	<-started
	awaitState(k, task, kernel.StateDelayed)

	select {
	case r := <-resCh:
		t.Fatalf("Wait returned early with %v", r)
	default:
	}

	c.Signal()
	if r := <-resCh; r != kernel.Success {
		t.Fatalf("Wait = %v, want Success", r)
	}
	if owner := m.Owner(); owner != task {
		t.Fatalf("mutex owner after wake = %v, want the waiter reacquired it", owner)
	}
	close(checked)
}

func TestBroadcastWakesEveryWaiter(t *testing.T) {
	k := kernel.New(kernel.Config{})
	c := New(k)

	// Each waiter gets its own mutex so the three tasks never contend
	// with each other for lock ownership; only the condvar is shared.
	const n = 3
	done := make(chan kernel.Result, n)
	tasks := make([]*kernel.Task, n)
	for i := 0; i < n; i++ {
		m := k.NewMutex()
		task := kernel.NewTask("waiter", 1, func(self *kernel.Task) {
			m.Wait(self)
			res := c.Wait(self, m)
			m.Give(self)
			done <- res
		})
		tasks[i] = task
		k.Start(task)
	}

	for _, task := range tasks {
		awaitState(k, task, kernel.StateDelayed)
	}
	c.Broadcast()

	for i := 0; i < n; i++ {
		if r := <-done; r != kernel.Success {
			t.Fatalf("Wait = %v, want Success", r)
		}
	}
}
