package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"golang.org/x/sync/singleflight"

	"statekernel/internal/buildinfo"
	"statekernel/trace"
)

// snapshot is what one frame needs from the kernel: the ready list, in
// scheduling order, and the tail of the trace ring.
type snapshot struct {
	ready  []string
	events []trace.Event
}

type game struct {
	m     *monitor
	group singleflight.Group
	last  snapshot
}

// snapshot collapses concurrent callers onto one read of kernel state,
// the handoff ebiten's render loop and any future poller would
// otherwise race on.
func (g *game) snapshot() snapshot {
	v, _, _ := g.group.Do("snapshot", func() (interface{}, error) {
		return snapshot{
			ready:  g.m.k.ReadyOrder(),
			events: g.m.trace.Snapshot(),
		}, nil
	})
	return v.(snapshot)
}

func (g *game) Update() error {
	g.last = g.snapshot()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 0x10, G: 0x10, B: 0x14, A: 0xff})

	const barHeight = 18
	for i, name := range g.last.ready {
		y := 24 + i*barHeight
		width := 300 - i*20
		if width < 20 {
			width = 20
		}
		c := barColor(i)
		ebitenutil.DrawRect(screen, 8, float64(y), float64(width), barHeight-4, c)
		ebitenutil.DebugPrintAt(screen, name, 8, y)
	}

	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("statekernel monitor (%s)", buildinfo.Short()), 8, 4)

	n := len(g.last.events)
	start := 0
	if n > 8 {
		start = n - 8
	}
	for i, ev := range g.last.events[start:] {
		line := fmt.Sprintf("tick %d: %s -> %s", ev.Tick, ev.From, ev.To)
		ebitenutil.DebugPrintAt(screen, line, 320, 24+i*14)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func barColor(i int) color.RGBA {
	palette := []color.RGBA{
		{R: 0xe0, G: 0x60, B: 0x60, A: 0xff},
		{R: 0xe0, G: 0xb0, B: 0x40, A: 0xff},
		{R: 0x50, G: 0xb0, B: 0xe0, A: 0xff},
		{R: 0x60, G: 0xd0, B: 0x80, A: 0xff},
	}
	return palette[i%len(palette)]
}

func runWindow(m *monitor, width, height int) error {
	ebiten.SetWindowTitle("statekernel monitor (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(width, height)
	ebiten.SetTPS(60)
	g := &game{m: m}
	return ebiten.RunGame(g)
}
