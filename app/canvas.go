package app

import (
	"errors"
	"image"
	"image/color"

	"tinygo.org/x/drivers"
)

var errRotation = errors.New("canvas: rotation not supported")

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas is an off-screen RGBA surface the terminal draws into. It
// emulates a display with hardware vertical scrolling: SetScroll moves the
// first visible row and Frame reads the rows out in display order.
type Canvas struct {
	img    *image.RGBA
	w, h   int16
	scroll int16
}

func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
		w:   int16(width),
		h:   int16(height),
	}
}

func (c *Canvas) Size() (x, y int16) { return c.w, c.h }

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.img.SetRGBA(int(x), int(y), col)
}

// Display is a no-op; Frame pulls the pixels when the frame is presented.
func (c *Canvas) Display() error { return nil }

func (c *Canvas) FillRectangle(x, y, width, height int16, col color.RGBA) error {
	r := image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)).Intersect(c.img.Rect)
	for yy := r.Min.Y; yy < r.Max.Y; yy++ {
		for xx := r.Min.X; xx < r.Max.X; xx++ {
			c.img.SetRGBA(xx, yy, col)
		}
	}
	return nil
}

func (c *Canvas) SetScroll(line int16) {
	if c.h == 0 {
		return
	}
	c.scroll = ((line % c.h) + c.h) % c.h
}

func (c *Canvas) SetRotation(rotation drivers.Rotation) error {
	if rotation != drivers.Rotation0 {
		return errRotation
	}
	return nil
}

// Clear fills the surface and resets scrolling.
func (c *Canvas) Clear(col color.RGBA) {
	_ = c.FillRectangle(0, 0, c.w, c.h, col)
	c.scroll = 0
}

// Frame copies the visible image, scroll applied, into dst as packed RGBA
// rows. dst must hold width*height*4 bytes.
func (c *Canvas) Frame(dst []byte) {
	stride := int(c.w) * 4
	for y := 0; y < int(c.h); y++ {
		src := (y + int(c.scroll)) % int(c.h)
		off := src * c.img.Stride
		if (y+1)*stride > len(dst) {
			return
		}
		copy(dst[y*stride:(y+1)*stride], c.img.Pix[off:off+stride])
	}
}
