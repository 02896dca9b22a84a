package platform

import "math"

// ConfigFlags mirror the framework's window configuration flags.
type ConfigFlags uint32

const (
	FlagFullscreenMode  ConfigFlags = 0x00000002
	FlagWindowResizable ConfigFlags = 0x00000004
	FlagMSAA4xHint      ConfigFlags = 0x00000020
	FlagVsyncHint       ConfigFlags = 0x00000040
	FlagWindowHidden    ConfigFlags = 0x00000080
	FlagInterlacedHint  ConfigFlags = 0x00010000
)

// Size is a width and height in pixels.
type Size struct {
	Width, Height int
}

// Point is a pixel offset.
type Point struct {
	X, Y int
}

// Matrix is a column-major 4x4 transform.
type Matrix [16]float32

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Scale returns a scaling transform.
func Scale(x, y, z float32) Matrix {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// Window is the window and render-size record the framework reads back.
type Window struct {
	Ready        bool
	Fullscreen   bool
	EventWaiting bool
	Flags        ConfigFlags
	Title        string

	Screen     Size
	ScreenMin  Size
	ScreenMax  Size
	Display    Size
	Render     Size
	CurrentFbo Size

	RenderOffset Point
	ScreenScale  Matrix
}

// Storage holds the base path for relative file access.
type Storage struct {
	BasePath string
}

// Timer is the high-resolution timer base.
type Timer struct {
	Base     uint64
	Previous float64
	Current  float64
	Frame    float64
	Target   float64
	Counter  uint64
}

// Core is the per-process state the controller owns and hands out to the
// framework through accessors.
type Core struct {
	Window  Window
	Storage Storage
	Time    Timer
}

// SetupFramebuffer computes render size, offset and the screen-to-render
// transform for a display of width x height.
func (c *Core) SetupFramebuffer(width, height int) {
	w := &c.Window
	w.Display = Size{width, height}

	switch {
	case w.Screen.Width > w.Display.Width || w.Screen.Height > w.Display.Height:
		// Downscale to fit the display, keeping aspect.
		widthRatio := float64(w.Display.Width) / float64(w.Screen.Width)
		heightRatio := float64(w.Display.Height) / float64(w.Screen.Height)
		if widthRatio <= heightRatio {
			w.Render.Width = w.Display.Width
			w.Render.Height = int(math.Round(float64(w.Screen.Height) * widthRatio))
			w.RenderOffset = Point{0, w.Display.Height - w.Render.Height}
		} else {
			w.Render.Width = int(math.Round(float64(w.Screen.Width) * heightRatio))
			w.Render.Height = w.Display.Height
			w.RenderOffset = Point{w.Display.Width - w.Render.Width, 0}
		}
		ratio := float32(w.Render.Width) / float32(w.Screen.Width)
		w.ScreenScale = Scale(ratio, ratio, 1)
		w.Render = w.Display
	case w.Screen.Width < w.Display.Width || w.Screen.Height < w.Display.Height:
		// Upscale: render at screen size, letterboxed on the display.
		displayRatio := float64(w.Display.Width) / float64(w.Display.Height)
		screenRatio := float64(w.Screen.Width) / float64(w.Screen.Height)
		if displayRatio <= screenRatio {
			w.Render.Width = w.Screen.Width
			w.Render.Height = int(math.Round(float64(w.Screen.Width) / displayRatio))
			w.RenderOffset = Point{0, w.Render.Height - w.Screen.Height}
		} else {
			w.Render.Width = int(math.Round(float64(w.Screen.Height) * displayRatio))
			w.Render.Height = w.Screen.Height
			w.RenderOffset = Point{w.Render.Width - w.Screen.Width, 0}
		}
	default:
		w.Render = w.Screen
		w.RenderOffset = Point{}
	}
}
