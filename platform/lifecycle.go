package platform

import (
	"context"
	"fmt"
	"os"

	"emotion/gsmem"
	"emotion/hal"
)

// Init brings the console up: display mode, renderer, video memory layout,
// window record, timer, firmware and finally the keyboard in raw,
// non-blocking mode. It runs once; a failed Init leaves the controller
// closed.
func (p *Platform) Init(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		return fmt.Errorf("init in state %s: %w", p.State(), ErrAlreadyInitialized)
	}
	if err := p.init(ctx); err != nil {
		p.core.Window.Ready = false
		p.setState(StateClosed)
		return err
	}
	p.setState(StateReady)
	p.log.Info("PLATFORM: Initialized")
	return nil
}

func (p *Platform) init(ctx context.Context) error {
	gs := p.hal.GS()

	gs.ResetGIF()
	gs.SetCrt(p.opt.Crt)
	if err := gs.InitRenderer(p.opt.ImmVertices, p.opt.ImmDisplayLists); err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	if err := p.initGsMemory(); err != nil {
		return err
	}

	w := &p.core.Window
	w.Fullscreen = true
	w.Flags |= FlagFullscreenMode
	if p.opt.Crt.Interlace {
		w.Flags |= FlagInterlacedHint
	}
	w.Display = w.Screen
	w.Render = w.Screen
	w.CurrentFbo = w.Screen
	w.EventWaiting = false
	w.ScreenScale = Identity()
	p.input.Mouse.SetPosition(w.Screen.Width/2, w.Screen.Height/2)
	p.input.Mouse.SetScale(1, 1)

	p.core.SetupFramebuffer(w.Display.Width, w.Display.Height)
	w.Render = w.Screen
	w.CurrentFbo = w.Render

	p.log.Info("PLATFORM: Device initialized successfully")
	p.log.Infof("    > Display size: %d x %d", w.Display.Width, w.Display.Height)
	p.log.Infof("    > Screen size:  %d x %d", w.Screen.Width, w.Screen.Height)
	p.log.Infof("    > Render size:  %d x %d", w.Render.Width, w.Render.Height)
	p.log.Infof("    > Viewport offsets: %d, %d", w.RenderOffset.X, w.RenderOffset.Y)

	p.renderer = gs.Info()
	p.log.Infof("PLATFORM: GL_VENDOR:   %q", p.renderer.Vendor)
	p.log.Infof("PLATFORM: GL_VERSION:  %q", p.renderer.Version)
	p.log.Infof("PLATFORM: GL_RENDERER: %q", p.renderer.Renderer)
	w.Ready = true

	p.core.Time.Base = p.hal.Clock().Nanotime()

	base := p.opt.WorkDir
	if base == "" {
		if wd, err := os.Getwd(); err == nil {
			base = wd
		}
	}
	p.core.Storage.BasePath = base

	st, err := p.seq.BringUp(ctx)
	if err != nil {
		return err
	}
	p.status = st

	kbd := p.hal.Keyboard()
	if err := kbd.SetReadMode(hal.ReadModeRaw); err != nil {
		return fmt.Errorf("keyboard read mode: %w", err)
	}
	if err := kbd.SetBlockingMode(hal.NonBlocking); err != nil {
		return fmt.Errorf("keyboard blocking mode: %w", err)
	}
	p.input.ClearShift()
	return nil
}

// initGsMemory lays out video memory from the table and mirrors every slot
// and the frame set onto the GS.
func (p *Platform) initGsMemory() error {
	layout := gsmem.DefaultLayout()
	if p.opt.Layout != nil {
		layout = *p.opt.Layout
	}
	vram, err := gsmem.Build(layout, gsmem.PoolPages)
	if err != nil {
		return fmt.Errorf("gs memory: %w", err)
	}

	gs := p.hal.GS()
	for _, si := range vram.Allocation() {
		s := si.Slot
		if err := gs.ReserveSlot(s.Offset, s.Pages, uint8(s.Format), s.Locked); err != nil {
			return fmt.Errorf("gs memory slot %d: %w", int(si.Handle), err)
		}
	}
	p.vram = vram

	frame, err := p.frameSpec()
	if err != nil {
		return err
	}
	if err := gs.SetFrame(frame); err != nil {
		return fmt.Errorf("gs frame: %w", err)
	}
	vram.Print(p.log)
	return nil
}

func (p *Platform) buffer(h gsmem.AreaHandle) (hal.Buffer, error) {
	ar, err := p.vram.Area(h)
	if err != nil {
		return hal.Buffer{}, err
	}
	s, err := p.vram.Slot(ar.Slot)
	if err != nil {
		return hal.Buffer{}, err
	}
	return hal.Buffer{BasePage: s.Offset, Width: ar.Width, Height: ar.Height, PSM: uint8(ar.Format)}, nil
}

func (p *Platform) frameSpec() (hal.FrameSpec, error) {
	draw, ok := p.vram.DrawBuffers()
	if !ok {
		return hal.FrameSpec{}, fmt.Errorf("gs frame: %w", gsmem.ErrAreaUnbound)
	}
	var (
		f   hal.FrameSpec
		err error
	)
	f.Interlaced = draw.Mode == gsmem.Interlaced
	if f.Front, err = p.buffer(draw.Front); err != nil {
		return f, err
	}
	if f.Back, err = p.buffer(draw.Back); err != nil {
		return f, err
	}
	if f.Depth, err = p.buffer(draw.Depth); err != nil {
		return f, err
	}
	return f, nil
}

// PollInput applies this frame's keyboard events.
func (p *Platform) PollInput() error {
	if p.State() != StateReady {
		return ErrNotReady
	}
	p.input.Poll()
	return nil
}

// SwapBuffers shows the back buffer and makes the old front the new draw
// target.
func (p *Platform) SwapBuffers() error {
	if p.State() != StateReady {
		return ErrNotReady
	}
	if err := p.hal.GS().Flip(); err != nil {
		return fmt.Errorf("swap: %w", err)
	}
	p.vram.Swap()
	p.core.Time.Counter++
	return nil
}

// BackBuffer describes the current draw target.
func (p *Platform) BackBuffer() (hal.Buffer, error) {
	if p.State() != StateReady {
		return hal.Buffer{}, ErrNotReady
	}
	draw, _ := p.vram.DrawBuffers()
	return p.buffer(draw.Back)
}

// Present uploads an RGBA image of the back buffer's size into it.
func (p *Platform) Present(rgba []byte) error {
	b, err := p.BackBuffer()
	if err != nil {
		return err
	}
	return p.hal.GS().Upload(b, rgba)
}

// Close stops the keyboard driver and the renderer.
func (p *Platform) Close() error {
	if !p.state.CompareAndSwap(int32(StateReady), int32(StateClosed)) {
		return fmt.Errorf("close in state %s: %w", p.State(), ErrNotReady)
	}
	p.core.Window.Ready = false
	kerr := p.hal.Keyboard().Close()
	gerr := p.hal.GS().Close()
	p.log.Info("PLATFORM: Closed")
	if kerr != nil {
		return fmt.Errorf("close keyboard: %w", kerr)
	}
	if gerr != nil {
		return fmt.Errorf("close gs: %w", gerr)
	}
	return nil
}
