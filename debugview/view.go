// Package debugview renders a live text dump of a cdrom.Device's
// registers, FIFO occupancy, and command/motion state in an ebiten
// window, grounded on the teacher's own use of ebiten
// (_examples/zeozeozeo-gopsx/emulator/renderer.ebiten.go) as the chosen
// GUI stack, generalized from a one-off triangle renderer into a
// standard ebiten.Game Update/Draw/Layout loop. Text is rasterized with
// golang.org/x/image/font/basicfont and golang.org/x/image/draw rather
// than a heavier immediate-mode UI library (see DESIGN.md's dropped-
// dependency notes on imgui-go).
package debugview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/go-psx/psxcd/cdrom"
)

const (
	windowWidth  = 480
	windowHeight = 360
	lineHeight   = 14
)

// Inspector is an ebiten.Game that renders a snapshot of a cdrom.Device
// every frame. The snapshot function is pluggable so the caller decides
// what to expose (register state, FIFO sizes, the last sector header),
// rather than debugview reaching into cdrom internals.
type Inspector struct {
	device   *cdrom.Device
	snapshot func(*cdrom.Device) []string

	canvas *image.RGBA
	img    *ebiten.Image
}

// New builds an Inspector over device. snapshot should return one
// string per line of the debug dump; DefaultSnapshot provides a
// reasonable default.
func New(device *cdrom.Device, snapshot func(*cdrom.Device) []string) *Inspector {
	if snapshot == nil {
		snapshot = DefaultSnapshot
	}
	return &Inspector{
		device:   device,
		snapshot: snapshot,
		canvas:   image.NewRGBA(image.Rect(0, 0, windowWidth, windowHeight)),
		img:      ebiten.NewImage(windowWidth, windowHeight),
	}
}

// DefaultSnapshot renders the fields visible to debugview without
// exporting cdrom's internal Device fields: the MMIO-visible status
// byte and interrupt flag, read through Device.Load like any other
// observer would.
func DefaultSnapshot(d *cdrom.Device) []string {
	d.Store(0, 0)
	status := d.Load(0)
	d.Store(0, 3)
	flags := d.Load(3)

	return []string{
		fmt.Sprintf("status byte:     0x%02X", status),
		fmt.Sprintf("interrupt flags: 0x%02X", flags&0x1F),
	}
}

func (v *Inspector) Update() error { return nil }

func (v *Inspector) Draw(screen *ebiten.Image) {
	xdraw.Draw(v.canvas, v.canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, xdraw.Src)

	face := basicfont.Face7x13
	lines := v.snapshot(v.device)
	for i, line := range lines {
		drawString(v.canvas, face, 4, (i+1)*lineHeight, line)
	}

	v.img.WritePixels(v.canvas.Pix)
	op := &ebiten.DrawImageOptions{}
	screen.DrawImage(v.img, op)
}

func (v *Inspector) Layout(outsideWidth, outsideHeight int) (int, int) {
	return windowWidth, windowHeight
}

func drawString(dst *image.RGBA, face font.Face, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA{0x30, 0xFF, 0x30, 0xFF}),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(strings.TrimRight(s, "\n"))
}
