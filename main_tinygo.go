//go:build tinygo

// Command statekernel, built for a TinyGo target, boots the kernel
// against the real-hardware port and runs the same small demo workload
// as the host build, logging through logsvc over the console UART.
package main

import (
	"fmt"
	"os"

	"statekernel/kernel"
	"statekernel/logsvc"
	"statekernel/messagebuffer"
	"statekernel/port/mcu"
	"statekernel/semaphore"
)

func main() {
	p := mcu.New()
	k := kernel.New(kernel.Config{Port: p, RoundRobin: true, IdlePriority: 0})
	p.Bind(k)

	logBuf := messagebuffer.New(k, 1024)
	log := logsvc.NewClient(logBuf)
	sink := kernel.NewTask("logsink", 1, logsvc.Sink(logBuf, os.Stdout))
	k.Start(sink)

	mu := k.NewMutex()
	sem := semaphore.New(k, 2, 2)

	const taskCount = 3
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
				k.Sleep(self, kernel.Tick(3+id))
				mu.Give(self)

				sem.Give()
				if res := k.Sleep(self, kernel.Tick(5+2*id)); res != kernel.Timeout {
					return
				}
			}
		})
		k.Start(worker)
	}

	p.Start()
}
