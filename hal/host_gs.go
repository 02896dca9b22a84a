//go:build !ps2

package hal

import (
	"errors"
	"fmt"
	"sync"
)

// VRAMBytes is the size of the GS local memory.
const VRAMBytes = 4 * 1024 * 1024

var (
	ErrRendererNotReady = errors.New("gs: renderer not initialized")
	ErrBufferRange      = errors.New("gs: buffer outside video memory")
	ErrUnsupportedPSM   = errors.New("gs: unsupported pixel storage mode")
)

type hostSlot struct {
	offset, pages int
	psm           uint8
	locked        bool
}

type hostGS struct {
	mu sync.Mutex

	gifReset bool
	crt      CrtMode
	crtSet   bool
	renderer bool
	immVerts int
	immLists int

	vram  []byte
	slots []hostSlot
	frame FrameSpec
	bound bool
	flips uint64
}

func newHostGS() *hostGS {
	return &hostGS{vram: make([]byte, VRAMBytes)}
}

func (g *hostGS) ResetGIF() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gifReset = true
}

func (g *hostGS) SetCrt(m CrtMode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.crt = m
	g.crtSet = true
}

func (g *hostGS) InitRenderer(immVertices, immDisplayLists int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.crtSet {
		return fmt.Errorf("gs: renderer before display mode: %w", ErrRendererNotReady)
	}
	if immVertices <= 0 || immDisplayLists <= 0 {
		return fmt.Errorf("gs: renderer sizes %d/%d: invalid", immVertices, immDisplayLists)
	}
	g.renderer = true
	g.immVerts = immVertices
	g.immLists = immDisplayLists
	return nil
}

func (g *hostGS) ReserveSlot(offset, pages int, psm uint8, locked bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.renderer {
		return ErrRendererNotReady
	}
	if offset < 0 || pages <= 0 || (offset+pages)*PageBytes > len(g.vram) {
		return fmt.Errorf("gs: slot %d+%d: %w", offset, pages, ErrBufferRange)
	}
	g.slots = append(g.slots, hostSlot{offset: offset, pages: pages, psm: psm, locked: locked})
	return nil
}

func (g *hostGS) SetFrame(f FrameSpec) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.renderer {
		return ErrRendererNotReady
	}
	for _, b := range []Buffer{f.Front, f.Back, f.Depth} {
		if _, err := g.spanLocked(b); err != nil {
			return err
		}
	}
	g.frame = f
	g.bound = true
	return nil
}

func (g *hostGS) spanLocked(b Buffer) ([]byte, error) {
	bpp := bytesPerPixel(b.PSM)
	if bpp == 0 {
		return nil, fmt.Errorf("gs: psm %d: %w", b.PSM, ErrUnsupportedPSM)
	}
	start := b.BasePage * PageBytes
	end := start + b.Width*b.Height*bpp
	if b.BasePage < 0 || b.Width <= 0 || b.Height <= 0 || end > len(g.vram) {
		return nil, fmt.Errorf("gs: buffer at page %d %dx%d: %w", b.BasePage, b.Width, b.Height, ErrBufferRange)
	}
	return g.vram[start:end], nil
}

func (g *hostGS) Upload(dst Buffer, rgba []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	span, err := g.spanLocked(dst)
	if err != nil {
		return err
	}
	bpp := bytesPerPixel(dst.PSM)
	n := dst.Width * dst.Height
	if len(rgba) < n*4 {
		n = len(rgba) / 4
	}
	for i := 0; i < n; i++ {
		s := rgba[i*4 : i*4+4]
		storePixel(span[i*bpp:], dst.PSM, s[0], s[1], s[2], s[3])
	}
	return nil
}

func (g *hostGS) Flip() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.bound {
		return ErrRendererNotReady
	}
	g.frame.Front, g.frame.Back = g.frame.Back, g.frame.Front
	g.flips++
	return nil
}

func (g *hostGS) Info() RendererInfo {
	return RendererInfo{Vendor: "emotion", Version: "host", Renderer: "software GS"}
}

func (g *hostGS) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.renderer = false
	g.bound = false
	g.crtSet = false
	return nil
}

// displaySize reports the scanned-out buffer dimensions.
func (g *hostGS) displaySize() (w, h int, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.bound {
		return 0, 0, false
	}
	return g.frame.Front.Width, g.frame.Front.Height, true
}

// snapshotRGBA converts the front buffer into dst (w*h*4 bytes).
func (g *hostGS) snapshotRGBA(dst []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.bound {
		return
	}
	b := g.frame.Front
	span, err := g.spanLocked(b)
	if err != nil {
		return
	}
	bpp := bytesPerPixel(b.PSM)
	n := b.Width * b.Height
	for i := 0; i < n && i*4+3 < len(dst); i++ {
		r, gg, bb := loadPixel(span[i*bpp:], b.PSM)
		dst[i*4+0] = r
		dst[i*4+1] = gg
		dst[i*4+2] = bb
		dst[i*4+3] = 0xFF
	}
}
