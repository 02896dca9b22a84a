//go:build !ps2

package hal

import (
	"errors"
	"testing"
)

func readyGS(t *testing.T) *hostGS {
	t.Helper()
	g := newHostGS()
	g.ResetGIF()
	g.SetCrt(CrtMode{Interlace: true, Video: VideoNTSC, Field: FieldFrame})
	if err := g.InitRenderer(64*1024, 1000); err != nil {
		t.Fatalf("InitRenderer: %v", err)
	}
	return g
}

func TestHostGSRendererNeedsCrt(t *testing.T) {
	g := newHostGS()
	if err := g.InitRenderer(64*1024, 1000); !errors.Is(err, ErrRendererNotReady) {
		t.Fatalf("InitRenderer before SetCrt: %v", err)
	}
	if err := g.ReserveSlot(0, 1, psmCT32, false); !errors.Is(err, ErrRendererNotReady) {
		t.Fatalf("ReserveSlot before renderer: %v", err)
	}
}

func TestHostGSReserveSlotBounds(t *testing.T) {
	g := readyGS(t)
	if err := g.ReserveSlot(366, 64, psmCT32, false); err != nil {
		t.Fatalf("last slot: %v", err)
	}
	if err := g.ReserveSlot(500, 13, psmCT32, false); !errors.Is(err, ErrBufferRange) {
		t.Fatalf("overflow slot: %v", err)
	}
}

func TestHostGSUploadFlipSnapshot(t *testing.T) {
	g := readyGS(t)
	const w, h = 4, 2
	f := FrameSpec{
		Interlaced: true,
		Front:      Buffer{BasePage: 0, Width: w, Height: h, PSM: psmCT24},
		Back:       Buffer{BasePage: 1, Width: w, Height: h, PSM: psmCT24},
		Depth:      Buffer{BasePage: 2, Width: w, Height: h, PSM: psmZ24},
	}
	if err := g.SetFrame(f); err != nil {
		t.Fatalf("SetFrame: %v", err)
	}

	px := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		px[i*4+0] = 0x10
		px[i*4+1] = 0x20
		px[i*4+2] = 0x30
		px[i*4+3] = 0x80
	}
	if err := g.Upload(f.Back, px); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	snap := make([]byte, w*h*4)
	g.snapshotRGBA(snap)
	if snap[0] != 0 {
		t.Fatalf("front shows back buffer before flip: %x", snap[:4])
	}

	if err := g.Flip(); err != nil {
		t.Fatalf("Flip: %v", err)
	}
	g.snapshotRGBA(snap)
	if snap[0] != 0x10 || snap[1] != 0x20 || snap[2] != 0x30 || snap[3] != 0xFF {
		t.Fatalf("front after flip = %x", snap[:4])
	}
	if got := g.vram[PageBytes+3]; got != 0 {
		t.Fatalf("24-bit pixel stored top byte %x", got)
	}
}

func TestHostGSSetFrameRejectsBadBuffer(t *testing.T) {
	g := readyGS(t)
	f := FrameSpec{
		Front: Buffer{BasePage: 0, Width: 640, Height: 224, PSM: psmCT24},
		Back:  Buffer{BasePage: 511, Width: 640, Height: 224, PSM: psmCT24},
		Depth: Buffer{BasePage: 140, Width: 640, Height: 224, PSM: psmZ24},
	}
	if err := g.SetFrame(f); !errors.Is(err, ErrBufferRange) {
		t.Fatalf("SetFrame: %v", err)
	}
	f.Back.BasePage = 70
	f.Depth.PSM = 44
	if err := g.SetFrame(f); !errors.Is(err, ErrUnsupportedPSM) {
		t.Fatalf("SetFrame 4-bit depth: %v", err)
	}
}
