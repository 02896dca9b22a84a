package gsmem

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

func TestAreaPages(t *testing.T) {
	tests := []struct {
		w, h   int
		format PSM
		pages  int
	}{
		{640, 224, PSMCT24, 70},
		{640, 224, PSMZ24, 70},
		{640, 224, PSMCT32, 70},
		{640, 224, PSMCT16, 35},
		{64, 32, PSMCT32, 1},
		{64, 64, PSMCT32, 2},
		{128, 128, PSMCT32, 8},
		{256, 256, PSMCT32, 32},
		{512, 256, PSMCT32, 64},
		{128, 128, PSMT8, 2},
	}
	for _, tc := range tests {
		a := Area{Width: tc.w, Height: tc.h, Format: tc.format}
		if got := a.Pages(); got != tc.pages {
			t.Errorf("%dx%d %s = %d pages, want %d", tc.w, tc.h, tc.format, got, tc.pages)
		}
	}
}

func TestAddSlotRejects(t *testing.T) {
	a := New(PoolPages)
	if _, err := a.AddSlot(10, 10, PSMCT32); err != nil {
		t.Fatalf("AddSlot: %v", err)
	}
	tests := []struct {
		name          string
		offset, pages int
		format        PSM
		want          error
	}{
		{"overlap head", 5, 10, PSMCT32, ErrOverlap},
		{"overlap tail", 19, 1, PSMCT32, ErrOverlap},
		{"inside", 12, 2, PSMCT32, ErrOverlap},
		{"past pool", 500, 13, PSMCT32, ErrPoolExhausted},
		{"negative", -1, 2, PSMCT32, ErrPoolExhausted},
		{"empty", 30, 0, PSMCT32, ErrPoolExhausted},
		{"bad format", 30, 1, PSM(99), ErrBadFormat},
	}
	for _, tc := range tests {
		if _, err := a.AddSlot(tc.offset, tc.pages, tc.format); !errors.Is(err, tc.want) {
			t.Errorf("%s: AddSlot = %v, want %v", tc.name, err, tc.want)
		}
	}
	if _, err := a.AddSlot(20, 1, PSMCT32); err != nil {
		t.Fatalf("adjacent slot: %v", err)
	}
}

func TestBindAreaToSlot(t *testing.T) {
	a := New(PoolPages)
	small, _ := a.AddSlot(0, 69, PSMCT32)
	big, _ := a.AddSlot(69, 70, PSMCT32)
	frame := a.CreateArea(640, 224, PSMCT24)

	if err := a.BindAreaToSlot(frame, small); !errors.Is(err, ErrAreaTooLarge) {
		t.Fatalf("bind to small slot: %v", err)
	}
	if err := a.BindAreaToSlot(frame, big); err != nil {
		t.Fatalf("bind: %v", err)
	}
	other := a.CreateArea(64, 64, PSMCT32)
	if err := a.BindAreaToSlot(other, big); !errors.Is(err, ErrSlotBound) {
		t.Fatalf("bind to bound slot: %v", err)
	}
	if err := a.BindAreaToSlot(AreaHandle(42), big); !errors.Is(err, ErrUnknownArea) {
		t.Fatalf("unknown area: %v", err)
	}
	if err := a.BindAreaToSlot(other, SlotHandle(42)); !errors.Is(err, ErrUnknownSlot) {
		t.Fatalf("unknown slot: %v", err)
	}
	if err := a.SetDisplayBuffers(Interlaced, frame, other); !errors.Is(err, ErrAreaUnbound) {
		t.Fatalf("display with unbound area: %v", err)
	}
}

func TestAllocSkipsLockedAndBound(t *testing.T) {
	a := New(PoolPages)
	locked, _ := a.AddSlot(0, 8, PSMCT32)
	_ = a.LockSlot(locked)
	bound, _ := a.AddSlot(8, 8, PSMCT32)
	_ = a.BindAreaToSlot(a.CreateArea(128, 128, PSMCT32), bound)
	small, _ := a.AddSlot(16, 2, PSMCT32)
	free, _ := a.AddSlot(18, 8, PSMCT32)

	h, err := a.Alloc(4, PSMCT32)
	if err != nil || h != free {
		t.Fatalf("Alloc(4) = %d, %v; want slot %d", h, err, free)
	}
	if _, err := a.Alloc(4, PSMCT32); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("second Alloc(4): %v", err)
	}
	h, err = a.Alloc(1, PSMCT32)
	if err != nil || h != small {
		t.Fatalf("Alloc(1) = %d, %v; want slot %d", h, err, small)
	}
	if err := a.Free(free); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := a.Free(free); err == nil {
		t.Fatal("double Free accepted")
	}
	if h, err := a.Alloc(8, PSMCT32); err != nil || h != free {
		t.Fatalf("Alloc after Free = %d, %v", h, err)
	}
}

func TestSwap(t *testing.T) {
	a, err := Build(DefaultLayout(), PoolPages)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	draw, _ := a.DrawBuffers()
	disp, _ := a.DisplayBuffers()
	a.Swap()
	draw2, _ := a.DrawBuffers()
	disp2, _ := a.DisplayBuffers()
	if draw2.Front != draw.Back || draw2.Back != draw.Front || draw2.Depth != draw.Depth {
		t.Fatalf("draw after swap = %+v, before %+v", draw2, draw)
	}
	if disp2.Front != disp.Back || disp2.Back != disp.Front {
		t.Fatalf("display after swap = %+v, before %+v", disp2, disp)
	}
}

func TestPrint(t *testing.T) {
	a, err := Build(DefaultLayout(), PoolPages)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	l, hook := test.NewNullLogger()
	a.Print(l)
	entries := hook.AllEntries()
	if len(entries) != 1+len(a.Allocation()) {
		t.Fatalf("%d log lines for %d slots", len(entries), len(a.Allocation()))
	}
	if got := entries[1].Message; got != "    > slot  0: pages   0- 69 ( 70) PSM32   locked, area 0 640x224 PSM24" {
		t.Fatalf("first row = %q", got)
	}
}
