// Package window shows the strip in a desktop window.
package window

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/coreman2200/beacon/internal/pixel"
)

// Driver is both a render driver and an ebiten.Game. Write may be called
// from any goroutine; Run must be called from the main goroutine.
type Driver struct {
	Title string
	Scale int // window pixels per LED, default 8

	mu     sync.Mutex
	size   int
	frame  []byte
	dirty  bool
	closed bool
	img    *ebiten.Image
}

func New(size int, title string) *Driver {
	return &Driver{Title: title, Scale: 8, size: size, frame: make([]byte, size*4)}
}

func (d *Driver) Write(buf []pixel.Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(buf) != d.size {
		d.size = len(buf)
		d.frame = make([]byte, d.size*4)
	}
	pixel.PutRGBA(d.frame, buf)
	d.dirty = true
	return nil
}

func (d *Driver) Update() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ebiten.Termination
	}
	return nil
}

func (d *Driver) Draw(screen *ebiten.Image) {
	d.mu.Lock()
	if d.img == nil || d.img.Bounds().Dx() != d.size {
		d.img = ebiten.NewImage(d.size, 1)
		d.dirty = true
	}
	if d.dirty {
		d.img.WritePixels(d.frame)
		d.dirty = false
	}
	d.mu.Unlock()

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(w)/float64(d.size), float64(h))
	screen.DrawImage(d.img, op)
}

func (d *Driver) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it is closed by the user or by
// Close.
func (d *Driver) Run() error {
	scale := d.Scale
	if scale <= 0 {
		scale = 8
	}
	ebiten.SetWindowTitle(d.Title)
	ebiten.SetWindowSize(d.size*scale, 4*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(d)
}

func (d *Driver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}
