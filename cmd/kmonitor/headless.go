package main

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyterm"
)

// gridDisplay is a tinyterm.Displayer backed by an in-memory monochrome
// pixel grid instead of real hardware, so the same terminal rendering
// logic the teacher uses for an on-board display works over plain
// stdout for a headless run.
type gridDisplay struct {
	w, h int16
	px   []bool
}

func newGridDisplay(w, h int16) *gridDisplay {
	return &gridDisplay{w: w, h: h, px: make([]bool, int(w)*int(h))}
}

func (d *gridDisplay) Size() (int16, int16) { return d.w, d.h }

func (d *gridDisplay) on(c color.RGBA) bool { return c.R != 0 || c.G != 0 || c.B != 0 }

func (d *gridDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.w || y >= d.h {
		return
	}
	d.px[int(y)*int(d.w)+int(x)] = d.on(c)
}

func (d *gridDisplay) Display() error { return nil }

func (d *gridDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	v := d.on(c)
	x0, y0, x1, y1 := clamp16(x, 0, d.w), clamp16(y, 0, d.h), clamp16(x+width, 0, d.w), clamp16(y+height, 0, d.h)
	for py := y0; py < y1; py++ {
		row := int(py) * int(d.w)
		for px := x0; px < x1; px++ {
			d.px[row+int(px)] = v
		}
	}
	return nil
}

func (d *gridDisplay) ScrollUp(pixels int16, bg color.RGBA) error {
	n := int(pixels) * int(d.w)
	if n <= 0 || n >= len(d.px) {
		for i := range d.px {
			d.px[i] = d.on(bg)
		}
		return nil
	}
	copy(d.px, d.px[n:])
	for i := len(d.px) - n; i < len(d.px); i++ {
		d.px[i] = d.on(bg)
	}
	return nil
}

func (d *gridDisplay) SetScroll(int16)                    {}
func (d *gridDisplay) SetRotation(drivers.Rotation) error { return nil }

func clamp16(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// render draws the grid to w using half-block characters, two pixel
// rows per text row.
func (d *gridDisplay) render(w *os.File) {
	fmt.Fprint(w, "\x1b[H\x1b[2J")
	for y := int16(0); y+1 < d.h; y += 2 {
		for x := int16(0); x < d.w; x++ {
			top := d.px[int(y)*int(d.w)+int(x)]
			bot := d.px[int(y+1)*int(d.w)+int(x)]
			switch {
			case top && bot:
				fmt.Fprint(w, "█")
			case top:
				fmt.Fprint(w, "▀")
			case bot:
				fmt.Fprint(w, "▄")
			default:
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprintln(w)
	}
}

func runHeadless(m *monitor) error {
	disp := newGridDisplay(100, 48)
	term := tinyterm.NewTerminal(disp)
	term.Configure(&tinyterm.Config{
		Font:              &freemono.Regular9pt7b,
		FontHeight:        10,
		FontOffset:        8,
		UseSoftwareScroll: true,
	})

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case line := <-m.logCh:
			fmt.Fprint(term, line)
		case <-ticker.C:
			fmt.Fprintf(term, "ready: %v\n", m.k.ReadyOrder())
			disp.render(os.Stdout)
		}
	}
}

var _ tinyfont.Fonter = &freemono.Regular9pt7b
