package main

import (
	"fmt"
	"time"

	"statekernel/kernel"
	"statekernel/logsvc"
	"statekernel/messagebuffer"
	"statekernel/port/sim"
	"statekernel/trace"
)

// monitor owns the demo kernel, its workload, and the observational
// plumbing (trace ring, log sink) cmd/kmonitor's two frontends read
// from.
type monitor struct {
	k      *kernel.Kernel
	port   *sim.Port
	trace  *trace.Ring
	log    *logsvc.Client
	logBuf *messagebuffer.Buffer
	logCh  chan string

	tasks []*kernel.Task
}

func newMonitor(taskCount int, tick time.Duration) *monitor {
	if taskCount < 1 {
		taskCount = 1
	}

	p := sim.New(tick)
	k := kernel.New(kernel.Config{Port: p, RoundRobin: true, IdlePriority: 0})
	p.Bind(k)

	m := &monitor{k: k, port: p, trace: trace.NewRing(256), logCh: make(chan string, 64)}
	p.OnSwitch(func(from, to *kernel.Task) {
		m.trace.Record(k, from, to)
	})

	m.logBuf = messagebuffer.New(k, 4096)
	m.log = logsvc.NewClient(m.logBuf)
	sink := kernel.NewTask("logsink", 1, logsvc.Sink(m.logBuf, chanWriter{m.logCh}))
	k.Start(sink)
	m.tasks = append(m.tasks, sink)

	mu := k.NewMutex()
	for i := 0; i < taskCount; i++ {
		id := i
		prio := uint8(2 + id%3)
		worker := kernel.NewTask(fmt.Sprintf("worker-%d", id), prio, func(self *kernel.Task) {
			for n := 0; ; n++ {
				mu.Wait(self)
				m.log.Logf(self, "%s entered critical section (pass %d)", self.Name(), n)
				k.Sleep(self, kernel.Tick(3+id))
				mu.Give(self)
				if res := k.Sleep(self, kernel.Tick(5+2*id)); res != kernel.Timeout {
					return
				}
			}
		})
		k.Start(worker)
		m.tasks = append(m.tasks, worker)
	}

	p.Run()
	return m
}

func (m *monitor) stop() {
	m.port.Stop()
	m.logBuf.Kill()
}

// chanWriter adapts a string channel to io.Writer for logsvc.Sink, which
// writes one line per call.
type chanWriter struct {
	ch chan string
}

func (w chanWriter) Write(p []byte) (int, error) {
	select {
	case w.ch <- string(p):
	default:
	}
	return len(p), nil
}
