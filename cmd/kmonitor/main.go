// Command kmonitor runs a small demo workload on the kernel and shows it
// live: in a desktop window (ebiten), the ready list and the most recent
// context switches; headless (tinyterm), a scrolling text log of the
// workload's log lines and the ready list, for use over SSH or in CI.
// The timer list is not shown in either mode.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"statekernel/internal/buildinfo"
)

func main() {
	var (
		headless  = flag.Bool("headless", false, "Run as a scrolling text log instead of a window.")
		hz        = flag.Int("hz", 100, "Kernel ticks per second.")
		width     = flag.Int("width", 480, "Window width in pixels (windowed mode only).")
		height    = flag.Int("height", 240, "Window height in pixels (windowed mode only).")
		showVers  = flag.Bool("version", false, "Print build info and exit.")
		taskCount = flag.Int("tasks", 4, "Number of demo worker tasks to run.")
	)
	flag.Parse()

	if *showVers {
		fmt.Println("kmonitor " + buildinfo.Short())
		return
	}

	mon := newMonitor(*taskCount, time.Second/time.Duration(*hz))
	defer mon.stop()

	var err error
	if *headless {
		err = runHeadless(mon)
	} else {
		err = runWindow(mon, *width, *height)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
