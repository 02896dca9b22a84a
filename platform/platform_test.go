package platform

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"emotion/gsmem"
	"emotion/hal"
	"emotion/input"
	"emotion/iop"

	"github.com/sirupsen/logrus/hooks/test"
)

func newHostPlatform(t *testing.T, cfg hal.HostConfig, opt Options) (*Platform, hal.HAL) {
	t.Helper()
	cfg.MemoryCardPath = filepath.Join(t.TempDir(), "mc0.bin")
	h := hal.NewHost(cfg)
	if opt.WorkDir == "" {
		opt.WorkDir = t.TempDir()
	}
	return New(h, opt), h
}

func TestInitPollEndToEnd(t *testing.T) {
	p, h := newHostPlatform(t, hal.HostConfig{ResetLatency: 2}, Options{})
	if !p.ShouldClose() {
		t.Fatal("ShouldClose false before Init")
	}
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.State() != StateReady {
		t.Fatalf("state = %s", p.State())
	}
	if err := p.PollInput(); err != nil {
		t.Fatalf("PollInput: %v", err)
	}

	if p.ShouldClose() {
		t.Fatal("ShouldClose after Init")
	}
	in := p.Input()
	if len(in.PressedKeys()) != 0 || len(in.PressedChars()) != 0 {
		t.Fatal("queues not empty")
	}
	if in.AnyKeyDown() {
		t.Fatal("key state not all up")
	}

	w := p.Core().Window
	if !w.Ready || !w.Fullscreen || w.Flags&FlagFullscreenMode == 0 {
		t.Fatalf("window = %+v", w)
	}
	want := Size{640, 224}
	if w.Screen != want || w.Display != want || w.Render != want || w.CurrentFbo != want {
		t.Fatalf("sizes: screen %v display %v render %v fbo %v", w.Screen, w.Display, w.Render, w.CurrentFbo)
	}
	if w.ScreenScale != Identity() {
		t.Fatal("screen scale not identity")
	}
	if pos := in.Mouse.Position(); pos != (input.Vec2{X: 320, Y: 112}) {
		t.Fatalf("mouse = %+v", pos)
	}
	if len(p.Modules()) != 7 || p.Firmware().Code != 1 {
		t.Fatalf("firmware = %+v", p.Firmware())
	}
	if p.MemoryCard().SizeBytes() == 0 {
		t.Fatal("memory card not open")
	}
	if p.Core().Storage.BasePath == "" {
		t.Fatal("no storage base path")
	}
	if p.Renderer().Vendor == "" {
		t.Fatal("renderer info missing")
	}
	if p.Time() < 0 {
		t.Fatal("negative time")
	}

	// Keys typed after Init reach the pipeline.
	for _, ev := range hal.TypeRune('!') {
		if !hal.InjectKey(h, ev) {
			t.Fatalf("inject %v", ev)
		}
	}
	if err := p.PollInput(); err != nil {
		t.Fatalf("PollInput: %v", err)
	}
	if c := in.GetCharPressed(); c != '!' {
		t.Fatalf("char = %q, want '!'", c)
	}
}

func TestInitTwice(t *testing.T) {
	p, _ := newHostPlatform(t, hal.HostConfig{}, Options{})
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := p.Init(context.Background()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Init = %v", err)
	}
	if p.State() != StateReady {
		t.Fatalf("state after second Init = %s", p.State())
	}
}

func TestNotReady(t *testing.T) {
	p, _ := newHostPlatform(t, hal.HostConfig{}, Options{})
	if err := p.PollInput(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("PollInput = %v", err)
	}
	if err := p.SwapBuffers(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("SwapBuffers = %v", err)
	}
	if err := p.Close(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Close = %v", err)
	}
}

func TestInitHandshakeFailure(t *testing.T) {
	p, _ := newHostPlatform(t, hal.HostConfig{Stuck: true}, Options{
		IOP: iop.Config{HandshakeTimeout: 10 * time.Millisecond, PollInterval: time.Millisecond},
	})
	err := p.Init(context.Background())
	if !errors.Is(err, iop.ErrHandshakeTimeout) {
		t.Fatalf("Init = %v", err)
	}
	var se *iop.StageError
	if !errors.As(err, &se) || se.Stage != iop.StageHandshake {
		t.Fatalf("stage error = %v", se)
	}
	if p.State() != StateClosed || !p.ShouldClose() || p.Core().Window.Ready {
		t.Fatalf("state after failed Init = %s", p.State())
	}
	if err := p.Init(context.Background()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("Init after failure = %v", err)
	}
}

func TestInitBadLayout(t *testing.T) {
	l := gsmem.DefaultLayout()
	l.Slots[4].Offset = 200
	p, h := newHostPlatform(t, hal.HostConfig{}, Options{Layout: &l})
	if err := p.Init(context.Background()); !errors.Is(err, gsmem.ErrOverlap) {
		t.Fatalf("Init = %v, want ErrOverlap", err)
	}
	if n := len(hal.LoadedModules(h)); n != 0 {
		t.Fatalf("firmware loaded despite bad layout: %d modules", n)
	}
}

func TestSwapAndPresent(t *testing.T) {
	p, _ := newHostPlatform(t, hal.HostConfig{}, Options{})
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	before, err := p.BackBuffer()
	if err != nil {
		t.Fatalf("BackBuffer: %v", err)
	}
	if before.BasePage != 70 || before.Width != 640 || before.Height != 224 || before.PSM != uint8(gsmem.PSMCT24) {
		t.Fatalf("back buffer = %+v", before)
	}
	if err := p.Present(make([]byte, 640*224*4)); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if err := p.SwapBuffers(); err != nil {
		t.Fatalf("SwapBuffers: %v", err)
	}
	after, _ := p.BackBuffer()
	if after.BasePage != 0 {
		t.Fatalf("back after swap = page %d, want 0", after.BasePage)
	}
	if p.Core().Time.Counter != 1 {
		t.Fatalf("frame counter = %d", p.Core().Time.Counter)
	}
}

func TestRequestCloseAndClose(t *testing.T) {
	p, h := newHostPlatform(t, hal.HostConfig{}, Options{})
	if err := p.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	p.RequestClose()
	if !p.ShouldClose() {
		t.Fatal("ShouldClose false after RequestClose")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if p.State() != StateClosed {
		t.Fatalf("state = %s", p.State())
	}
	if hal.InjectKey(h, hal.RawKey{Code: hal.ScanA, State: hal.RawKeyDown}) {
		t.Fatal("keyboard still accepting after Close")
	}
	if err := p.PollInput(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("PollInput after Close = %v", err)
	}
}

func TestUnsupportedWarn(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, _ := newHostPlatform(t, hal.HostConfig{}, Options{Log: logger})

	p.ToggleFullscreen()
	if got := hook.LastEntry().Message; got != "ToggleFullscreen() not available on target platform" {
		t.Fatalf("log = %q", got)
	}
	if n := p.MonitorCount(); n != 1 {
		t.Fatalf("MonitorCount = %d", n)
	}
	if got := hook.LastEntry().Message; got != "GetMonitorCount() not implemented on target platform" {
		t.Fatalf("log = %q", got)
	}
	if dpi := p.WindowScaleDPI(); dpi != (input.Vec2{X: 1, Y: 1}) {
		t.Fatalf("dpi = %+v", dpi)
	}
	if p.ClipboardText() != "" || p.WindowHandle() != 0 || p.MonitorName(0) != "" {
		t.Fatal("non-default getter result")
	}

	p.OpenURL("http://x/'; rm -rf ~")
	if got := hook.LastEntry().Message; !strings.Contains(got, "potentially malicious") {
		t.Fatalf("OpenURL log = %q", got)
	}
	p.OpenURL("http://example.com")
	if got := hook.LastEntry().Message; got != "OpenURL() not implemented on target platform" {
		t.Fatalf("OpenURL log = %q", got)
	}

	p.SetWindowTitle("demo")
	p.SetWindowMinSize(320, 200)
	if w := p.Core().Window; w.Title != "demo" || w.ScreenMin != (Size{320, 200}) {
		t.Fatalf("window = %+v", w)
	}
}

func TestCursor(t *testing.T) {
	p, _ := newHostPlatform(t, hal.HostConfig{}, Options{Width: 400, Height: 200})
	m := &p.Input().Mouse
	p.SetMousePosition(3, 4)
	p.DisableCursor()
	if !m.Hidden() || !m.Locked() || m.Position() != (input.Vec2{X: 200, Y: 100}) {
		t.Fatalf("after DisableCursor: hidden=%v locked=%v pos=%+v", m.Hidden(), m.Locked(), m.Position())
	}
	p.EnableCursor()
	if m.Hidden() || m.Locked() {
		t.Fatal("EnableCursor left cursor hidden or locked")
	}
	p.HideCursor()
	if !m.Hidden() {
		t.Fatal("HideCursor")
	}
	p.ShowCursor()
	if m.Hidden() {
		t.Fatal("ShowCursor")
	}
}

func TestSetupFramebuffer(t *testing.T) {
	tests := []struct {
		name    string
		screen  Size
		display Size
		render  Size
		offset  Point
		scale   float32
	}{
		{"same", Size{640, 224}, Size{640, 224}, Size{640, 224}, Point{}, 1},
		{"downscale wide", Size{1280, 448}, Size{640, 448}, Size{640, 448}, Point{0, 224}, 0.5},
		{"upscale wide", Size{320, 224}, Size{640, 224}, Size{640, 224}, Point{320, 0}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Core
			c.Window.Screen = tc.screen
			c.Window.ScreenScale = Identity()
			c.SetupFramebuffer(tc.display.Width, tc.display.Height)
			if c.Window.Render != tc.render || c.Window.RenderOffset != tc.offset {
				t.Fatalf("render %v offset %v, want %v %v", c.Window.Render, c.Window.RenderOffset, tc.render, tc.offset)
			}
			if c.Window.ScreenScale[0] != tc.scale {
				t.Fatalf("scale = %v, want %v", c.Window.ScreenScale[0], tc.scale)
			}
		})
	}
}
