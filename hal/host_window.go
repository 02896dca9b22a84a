//go:build !ps2 && cgo

package hal

import (
	"errors"
	"fmt"
	"image"

	"emotion/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	hostDefaultWidth  = 640
	hostDefaultHeight = 224
)

// WindowConfig controls the desktop window runner.
type WindowConfig struct {
	Title string
	// Scale multiplies the scanned-out buffer size for the window size.
	Scale int
}

// RunWindow opens a desktop window that shows the GS front buffer and
// forwards keyboard input to the simulated USB keyboard. step runs once per
// frame. It blocks until the window closes or step returns ErrShutdown.
func RunWindow(h HAL, step func() error, cfg WindowConfig) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return fmt.Errorf("window: %w", ErrNotImplemented)
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.Title == "" {
		cfg.Title = "emotion"
	}

	w, ht, ok := hh.gs.displaySize()
	if !ok {
		w, ht = hostDefaultWidth, hostDefaultHeight
	}

	g := &hostGame{h: hh, step: step, w: w, h2: ht}
	ebiten.SetWindowTitle(cfg.Title + " (" + buildinfo.Short() + ")")
	// Interlaced output shows both fields, so double the height on screen.
	ebiten.SetWindowSize(w*cfg.Scale, ht*cfg.Scale*2)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

type hostGame struct {
	h     *hostHAL
	step  func() error
	w, h2 int

	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *hostGame) Update() error {
	g.h.kbd.pollWindowKeys()
	if g.step != nil {
		if err := g.step(); err != nil {
			if errors.Is(err, ErrShutdown) {
				return ebiten.Termination
			}
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	w, ht, ok := g.h.gs.displaySize()
	if !ok {
		return
	}
	if g.img == nil || g.img.Bounds().Dx() != w || g.img.Bounds().Dy() != ht {
		g.img = image.NewRGBA(image.Rect(0, 0, w, ht))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, ht)
		g.w, g.h2 = w, ht
	}

	g.h.gs.snapshotRGBA(g.img.Pix)
	g.fbImg.WritePixels(g.img.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(1, 2)
	screen.DrawImage(g.fbImg, op)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.w, g.h2 * 2
}
