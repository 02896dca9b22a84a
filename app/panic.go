package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"emotion/platform"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Guard wraps a frame step so a panic inside it paints a panic screen,
// logs the stack and ends the loop with an error instead of tearing the
// process down mid-frame.
func Guard(p *platform.Platform, step func() error) func() error {
	return func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				stack := debug.Stack()
				showPanic(p, v, stack)
				err = fmt.Errorf("panic: %v", v)
			}
		}()
		return step()
	}
}

func showPanic(p *platform.Platform, v any, stack []byte) {
	lines := []string{"emotion panic:", fmt.Sprintf("panic: %v", v)}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}
	for _, l := range lines {
		p.Log().Error(l)
	}

	back, err := p.BackBuffer()
	if err != nil {
		return
	}
	c := NewCanvas(back.Width, back.Height)
	c.Clear(color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	drawLines(c, lines, color.RGBA{A: 0xFF})

	frame := make([]byte, back.Width*back.Height*4)
	c.Frame(frame)
	if p.Present(frame) == nil {
		_ = p.SwapBuffers()
	}
}

// drawLines wraps lines at the display width and stops at the bottom edge.
func drawLines(d drivers.Displayer, lines []string, fg color.RGBA) {
	font := &proggy.TinySZ8pt7b
	fontHeight, fontOffset := int16(10), int16(6)
	_, w := tinyfont.LineWidth(font, "0")
	fontWidth := int16(w)
	if fontWidth <= 0 {
		fontWidth = 6
	}
	maxW, maxH := d.Size()
	cols := maxW / fontWidth
	if cols <= 0 {
		cols = 1
	}

	y := int16(0)
	for _, line := range lines {
		for len(line) > 0 {
			if y+fontHeight > maxH {
				return
			}
			chunk, rest := takeRunes(line, cols)
			x := int16(0)
			for _, r := range chunk {
				tinyfont.DrawChar(d, font, x, y+fontOffset, r, fg)
				x += fontWidth
			}
			y += fontHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= int(n) {
		return s, ""
	}
	var i int
	var count int16
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
