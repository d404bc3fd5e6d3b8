package kernel

// Port is the platform seam the core calls into at well-defined points
// instead of touching hardware or real CPU state directly. A host
// simulation and a real board each provide one implementation; the core
// itself never branches on which.
type Port interface {
	// ISRLock masks interrupts and returns the previous mask, to be
	// restored by ISRUnlock. Reentrant.
	ISRLock() uintptr
	ISRUnlock(saved uintptr)

	// CtxSwitch notifies the port that the logically current task has
	// changed, from "from" (nil if none) to "to". On a host simulation
	// this is a trace hook; on real hardware it would restore a saved
	// stack frame.
	CtxSwitch(from, to *Task)

	// ClrLock/SetLock bracket a region that must run without the
	// scheduler considering a switch, independent of ISRLock.
	ClrLock()
	SetLock()

	// SetStack prepares a task's execution context before its first
	// dispatch. A no-op in the host simulation, where a task's "stack"
	// is simply its goroutine's real one.
	SetStack(t *Task)

	// TmrStart/TmrStop/TmrForce drive the tick-less hardware comparator:
	// arm it for the next delay, disarm it, or force an immediate match.
	TmrStart(delay Tick)
	TmrStop()
	TmrForce()

	// ISRInside reports whether the caller is running in interrupt
	// context, for the kernel's API-misuse panics.
	ISRInside() bool

	// SysTime reconstructs the current monotonic tick count from
	// whatever free-running counter the platform exposes, needed by the
	// tick-less timer path.
	SysTime() Tick
}
