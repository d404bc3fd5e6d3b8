//go:build !tinygo

// Command statekernel, built for the host, boots the kernel against the
// simulated port and runs a small demo workload: a few tasks trading a
// mutex and a semaphore, logging through logsvc to stdout. See
// cmd/kmonitor for a live view of the same kind of workload.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"statekernel/internal/buildinfo"
	"statekernel/kernel"
	"statekernel/logsvc"
	"statekernel/messagebuffer"
	"statekernel/port/sim"
	"statekernel/semaphore"
)

func main() {
	var (
		hz        = flag.Int("hz", 1000, "Kernel ticks per second.")
		ticks     = flag.Uint64("ticks", 200, "Run for this many ticks, then stop (0 = run forever).")
		taskCount = flag.Int("tasks", 3, "Number of demo worker tasks to run.")
		showVers  = flag.Bool("version", false, "Print build info and exit.")
	)
	flag.Parse()

	if *showVers {
		fmt.Println("statekernel " + buildinfo.Short())
		return
	}

	if err := run(*hz, *ticks, *taskCount); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(hz int, ticks uint64, taskCount int) error {
	p := sim.New(time.Second / time.Duration(hz))
	k := kernel.New(kernel.Config{Port: p, RoundRobin: true, IdlePriority: 0})
	p.Bind(k)

	logBuf := messagebuffer.New(k, 4096)
	log := logsvc.NewClient(logBuf)
	sink := kernel.NewTask("logsink", 1, logsvc.Sink(logBuf, os.Stdout))
	k.Start(sink)

	mu := k.NewMutex()
	sem := semaphore.New(k, 2, 2)

	for i := 0; i < taskCount; i++ {
		id := i
		worker := kernel.NewTask(fmt.Sprintf("worker-%d", id), uint8(2+id%3), func(self *kernel.Task) {
			for n := 0; ; n++ {
				if res := sem.Wait(self); res != kernel.Success {
					return
				}
				log.Logf(self, "%s took a slot (pass %d)", self.Name(), n)

				mu.Wait(self)
				log.Logf(self, "%s entered critical section", self.Name())
				if res := k.Sleep(self, kernel.Tick(3+id)); res != kernel.Timeout {
					mu.Give(self)
					sem.Give()
					return
				}
				mu.Give(self)

				sem.Give()
				if res := k.Sleep(self, kernel.Tick(5+2*id)); res != kernel.Timeout {
					return
				}
			}
		})
		k.Start(worker)
	}

	p.Run()
	defer p.Stop()
	defer logBuf.Kill()

	if ticks == 0 {
		select {}
	}
	deadline := time.Duration(ticks) * (time.Second / time.Duration(hz))
	time.Sleep(deadline)
	return nil
}
