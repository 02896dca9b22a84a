// Package app is the on-screen console run on top of the platform layer:
// a text terminal fed by the keyboard pipeline and presented through the
// GS back buffer every frame.
package app

import (
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"emotion/hal"
	"emotion/input"
	"emotion/platform"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

const prompt = "> "

var background = color.RGBA{A: 0xFF}

var termConfig = &tinyterm.Config{
	Font:       &proggy.TinySZ8pt7b,
	FontHeight: 10,
	FontOffset: 6,
}

// Console owns the terminal, its canvas and the line being edited. Step
// must be called from the frame loop goroutine; WriteLineBytes may be
// called from any.
type Console struct {
	p      *platform.Platform
	canvas *Canvas
	term   *tinyterm.Terminal
	frame  []byte

	line    []rune
	history []string
	recall  int

	mu      sync.Mutex
	pending []string
}

// NewConsole sizes the terminal to the back buffer. p must be initialized.
func NewConsole(p *platform.Platform) (*Console, error) {
	back, err := p.BackBuffer()
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	c := &Console{
		p:      p,
		canvas: NewCanvas(back.Width, back.Height),
		frame:  make([]byte, back.Width*back.Height*4),
	}
	c.canvas.Clear(background)
	c.term = tinyterm.NewTerminal(c.canvas)
	c.term.Configure(termConfig)

	st := p.Firmware()
	fmt.Fprintf(c.term, "emotion console  %dx%d\r\n", back.Width, back.Height)
	fmt.Fprintf(c.term, "%d modules loaded in %s, keyboard code %d\r\n", len(p.Modules()), st.Elapsed.Round(time.Millisecond), st.Code)
	fmt.Fprintf(c.term, "type help for commands\r\n%s", prompt)
	return c, nil
}

// WriteLineBytes queues a log line for the next frame.
func (c *Console) WriteLineBytes(b []byte) {
	c.mu.Lock()
	c.pending = append(c.pending, string(b))
	c.mu.Unlock()
}

// Step runs one frame: poll input, edit the line, present, swap. It
// returns hal.ErrShutdown once a close has been requested.
func (c *Console) Step() error {
	if c.p.ShouldClose() {
		return hal.ErrShutdown
	}
	if err := c.p.PollInput(); err != nil {
		return err
	}
	c.flushLog()

	in := c.p.Input()
	for ch := in.GetCharPressed(); ch != 0; ch = in.GetCharPressed() {
		c.line = append(c.line, ch)
		fmt.Fprintf(c.term, "%c", ch)
	}
	for k := in.GetKeyPressed(); k != input.KeyNull; k = in.GetKeyPressed() {
		switch k {
		case input.KeyEnter:
			c.submit()
		case input.KeyBackspace:
			if n := len(c.line); n > 0 {
				c.line = c.line[:n-1]
				c.redraw(1)
			}
		case input.KeyUp:
			c.recallHistory(-1)
		case input.KeyDown:
			c.recallHistory(1)
		}
	}
	if c.p.ShouldClose() {
		return hal.ErrShutdown
	}

	// The terminal draws on every write; the canvas holds the result.
	c.canvas.Frame(c.frame)
	if err := c.p.Present(c.frame); err != nil {
		return fmt.Errorf("console present: %w", err)
	}
	return c.p.SwapBuffers()
}

// Line returns the text being edited.
func (c *Console) Line() string { return string(c.line) }

func (c *Console) flushLog() {
	c.mu.Lock()
	lines := c.pending
	c.pending = nil
	c.mu.Unlock()
	if len(lines) == 0 {
		return
	}
	// Log output goes above the prompt, which is then redrawn.
	fmt.Fprintf(c.term, "\r%s\r", strings.Repeat(" ", len(prompt)+len(c.line)))
	for _, l := range lines {
		fmt.Fprintf(c.term, "%s\r\n", l)
	}
	fmt.Fprintf(c.term, "%s%s", prompt, string(c.line))
}

// redraw rewrites the prompt line, blanking extra trailing cells.
func (c *Console) redraw(extra int) {
	fmt.Fprintf(c.term, "\r%s%s%s\r%s%s", prompt, string(c.line), strings.Repeat(" ", extra), prompt, string(c.line))
}

func (c *Console) recallHistory(dir int) {
	if len(c.history) == 0 {
		return
	}
	c.recall += dir
	if c.recall < 0 {
		c.recall = 0
	}
	if c.recall > len(c.history) {
		c.recall = len(c.history)
	}
	old := len(c.line)
	if c.recall == len(c.history) {
		c.line = c.line[:0]
	} else {
		c.line = []rune(c.history[c.recall])
	}
	c.redraw(max(0, old-len(c.line)))
}

func (c *Console) submit() {
	cmd := strings.TrimSpace(string(c.line))
	c.line = c.line[:0]
	fmt.Fprint(c.term, "\r\n")
	if cmd != "" {
		c.history = append(c.history, cmd)
		for _, l := range c.run(cmd) {
			fmt.Fprintf(c.term, "%s\r\n", l)
		}
	}
	c.recall = len(c.history)
	fmt.Fprint(c.term, prompt)
}
