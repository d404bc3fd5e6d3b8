//go:build tinygo

// Package mcu is the real-hardware platform port, built only under
// tinygo. It drives a Kernel's tick source from a millisecond ticker the
// way hal's tinyGoTime does, and optionally mirrors kernel status onto an
// attached diagnostic display through the same drivers.Displayer seam the
// teacher's terminal service renders onto.
package mcu

import (
	"image/color"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"

	"statekernel/kernel"
)

var _ kernel.Port = (*Port)(nil)

var diagColor = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}

// Port drives a Kernel from a real hardware tick on a TinyGo target.
// Interrupt masking is left to the caller's board-specific critical
// section (none of this repo's target boards are wired here); ISRLock
// only tracks nesting depth, mirroring the reentrancy counter the
// original design calls for.
type Port struct {
	k *kernel.Kernel

	disp drivers.Displayer
	font tinyfont.Fonter

	isrDepth uint32
}

// New creates an MCU port. Call Bind before Start.
func New() *Port { return &Port{} }

// Bind attaches k as the kernel this port drives.
func (p *Port) Bind(k *kernel.Kernel) { p.k = k }

// AttachDisplay wires an optional diagnostic display: CtxSwitch events
// are mirrored as a one-line "current task" readout, the same
// tinyfont.WriteLine call shape the terminal service uses.
func (p *Port) AttachDisplay(d drivers.Displayer, font tinyfont.Fonter) {
	p.disp = d
	p.font = font
}

// Start begins driving SysTick once per millisecond. It never returns;
// run it in its own goroutine.
func (p *Port) Start() {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		p.k.SysTick()
	}
}

func (p *Port) ISRLock() uintptr {
	p.isrDepth++
	return uintptr(p.isrDepth)
}

func (p *Port) ISRUnlock(uintptr) {
	if p.isrDepth > 0 {
		p.isrDepth--
	}
}

func (p *Port) CtxSwitch(from, to *kernel.Task) {
	if p.disp == nil || p.font == nil || to == nil {
		return
	}
	_, h := p.disp.Size()
	tinyfont.WriteLine(p.disp, p.font, 0, h-2, to.Name(), diagColor)
}

func (p *Port) ClrLock()              {}
func (p *Port) SetLock()              {}
func (p *Port) SetStack(*kernel.Task) {}
func (p *Port) TmrStart(kernel.Tick)  {}
func (p *Port) TmrStop()              {}
func (p *Port) TmrForce()             {}
func (p *Port) ISRInside() bool       { return p.isrDepth > 0 }
func (p *Port) SysTime() kernel.Tick  { return kernel.Tick(time.Now().UnixMilli()) }
