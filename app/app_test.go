package app

import (
	"context"
	"errors"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"emotion/hal"
	"emotion/platform"

	"github.com/sirupsen/logrus/hooks/test"
	"tinygo.org/x/drivers"
)

func newConsole(t *testing.T) (*Console, *platform.Platform, hal.HAL) {
	t.Helper()
	h := hal.NewHost(hal.HostConfig{MemoryCardPath: filepath.Join(t.TempDir(), "mc0.bin")})
	logger, _ := test.NewNullLogger()
	p := platform.New(h, platform.Options{WorkDir: t.TempDir(), Log: logger})
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	c, err := NewConsole(p)
	if err != nil {
		t.Fatalf("NewConsole: %v", err)
	}
	return c, p, h
}

func typeText(t *testing.T, h hal.HAL, s string) {
	t.Helper()
	for _, r := range s {
		for _, ev := range hal.TypeRune(r) {
			if !hal.InjectKey(h, ev) {
				t.Fatalf("inject %q", r)
			}
		}
	}
}

func pressKey(t *testing.T, h hal.HAL, code uint8) {
	t.Helper()
	for _, ev := range hal.Stroke(code, false) {
		if !hal.InjectKey(h, ev) {
			t.Fatalf("inject scan %d", code)
		}
	}
}

func TestConsoleLineEditing(t *testing.T) {
	c, p, h := newConsole(t)

	typeText(t, h, "echo hix")
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := c.Line(); got != "echo hix" {
		t.Fatalf("line = %q", got)
	}

	pressKey(t, h, hal.ScanBackspace)
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := c.Line(); got != "echo hi" {
		t.Fatalf("line after backspace = %q", got)
	}

	pressKey(t, h, hal.ScanEnter)
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.Line() != "" || len(c.history) != 1 || c.history[0] != "echo hi" {
		t.Fatalf("after enter: line %q history %q", c.Line(), c.history)
	}

	pressKey(t, h, hal.ScanUp)
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := c.Line(); got != "echo hi" {
		t.Fatalf("recalled line = %q", got)
	}
	if n := p.Core().Time.Counter; n != 4 {
		t.Fatalf("frames = %d, want 4", n)
	}
}

func TestConsoleExit(t *testing.T) {
	c, p, h := newConsole(t)
	typeText(t, h, "exit")
	pressKey(t, h, hal.ScanEnter)

	// Characters are consumed before keys, so the line is complete when
	// Enter is handled.
	if err := c.Step(); !errors.Is(err, hal.ErrShutdown) {
		t.Fatalf("Step = %v, want ErrShutdown", err)
	}
	if !p.ShouldClose() {
		t.Fatal("exit did not request close")
	}
	if err := c.Step(); !errors.Is(err, hal.ErrShutdown) {
		t.Fatalf("second Step = %v", err)
	}
}

func TestConsoleCommands(t *testing.T) {
	c, _, _ := newConsole(t)
	tests := []struct {
		line string
		want string
	}{
		{"help", "modules"},
		{"modules", "1. iomanX"},
		{"modules", "7. ps2kbd"},
		{"vram", "430/512 pages in slots"},
		{"alloc 2", "slot 6 at page 214 (2 pages)"},
		{"alloc 999", "video memory exhausted"},
		{"alloc x", "invalid syntax"},
		{"free 6", "slot 6 free"},
		{"free 6", "not allocated"},
		{"card", "8192 KiB"},
		{"echo a  b", "a b"},
		{"frobnicate", "unknown command: frobnicate"},
	}
	for _, tc := range tests {
		out := strings.Join(c.run(tc.line), "\n")
		if !strings.Contains(out, tc.want) {
			t.Errorf("%q:\n%s\nwant substring %q", tc.line, out, tc.want)
		}
	}
}

func TestConsoleLogLines(t *testing.T) {
	c, _, _ := newConsole(t)
	c.WriteLineBytes([]byte("[PS2][INFO] hello"))
	if len(c.pending) != 1 {
		t.Fatalf("pending = %d", len(c.pending))
	}
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(c.pending) != 0 {
		t.Fatal("pending not flushed")
	}
}

func TestGuard(t *testing.T) {
	_, p, _ := newConsole(t)
	step := Guard(p, func() error { panic("boom") })
	err := step()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Guard = %v", err)
	}
	ok := Guard(p, func() error { return nil })
	if err := ok(); err != nil {
		t.Fatalf("Guard passthrough = %v", err)
	}
}

func TestCanvasScroll(t *testing.T) {
	c := NewCanvas(2, 3)
	red := color.RGBA{R: 0xFF, A: 0xFF}
	c.Clear(color.RGBA{A: 0xFF})
	_ = c.FillRectangle(0, 0, 2, 1, red)
	_ = c.FillRectangle(-5, -5, 1, 1, red) // clipped away

	frame := make([]byte, 2*3*4)
	c.Frame(frame)
	if frame[0] != 0xFF || frame[8] != 0 {
		t.Fatalf("unscrolled frame = %v", frame)
	}

	c.SetScroll(1)
	c.Frame(frame)
	// Row 0 of the image is now shown last.
	if frame[0] != 0 || frame[16] != 0xFF {
		t.Fatalf("scrolled frame = %v", frame)
	}

	c.SetScroll(-1)
	if c.scroll != 2 {
		t.Fatalf("scroll = %d, want 2", c.scroll)
	}
}

func TestTakeRunes(t *testing.T) {
	tests := []struct {
		s          string
		n          int16
		head, rest string
	}{
		{"abcdef", 4, "abcd", "ef"},
		{"abc", 4, "abc", ""},
		{"héllo", 2, "hé", "llo"},
		{"x", 0, "", "x"},
	}
	for _, tc := range tests {
		head, rest := takeRunes(tc.s, tc.n)
		if head != tc.head || rest != tc.rest {
			t.Errorf("takeRunes(%q, %d) = %q, %q", tc.s, tc.n, head, rest)
		}
	}
}

func litPixels(frame []byte) int {
	n := 0
	for i := 0; i+3 < len(frame); i += 4 {
		if frame[i] != 0 || frame[i+1] != 0 || frame[i+2] != 0 {
			n++
		}
	}
	return n
}

func TestConsoleDrawsOnWrite(t *testing.T) {
	c, _, h := newConsole(t)
	frame := make([]byte, len(c.frame))
	c.canvas.Frame(frame)
	banner := litPixels(frame)
	if banner == 0 {
		t.Fatal("banner not drawn")
	}

	typeText(t, h, "hello")
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	c.canvas.Frame(frame)
	if got := litPixels(frame); got <= banner {
		t.Fatalf("lit pixels %d after typing, %d before", got, banner)
	}
}

func TestDrawLinesOnDisplayer(t *testing.T) {
	c := NewCanvas(64, 20)
	c.Clear(color.RGBA{A: 0xFF})
	var d drivers.Displayer = c
	drawLines(d, []string{"a long line that wraps", "dropped"}, color.RGBA{R: 0xFF, A: 0xFF})

	frame := make([]byte, 64*20*4)
	c.Frame(frame)
	if litPixels(frame) == 0 {
		t.Fatal("nothing drawn")
	}
	if err := c.SetRotation(drivers.Rotation0); err != nil {
		t.Fatalf("SetRotation(0) = %v", err)
	}
	if err := c.SetRotation(drivers.Rotation90); !errors.Is(err, errRotation) {
		t.Fatalf("SetRotation(90) = %v", err)
	}
}
