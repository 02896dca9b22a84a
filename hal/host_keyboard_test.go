//go:build !ps2

package hal

import (
	"errors"
	"testing"
)

func startedKeyboard(t *testing.T) *hostKeyboard {
	t.Helper()
	k := newHostKeyboard()
	k.setResident(true)
	if _, err := k.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := k.SetReadMode(ReadModeRaw); err != nil {
		t.Fatalf("SetReadMode: %v", err)
	}
	if err := k.SetBlockingMode(NonBlocking); err != nil {
		t.Fatalf("SetBlockingMode: %v", err)
	}
	return k
}

func TestHostKeyboardNotResident(t *testing.T) {
	k := newHostKeyboard()
	if _, err := k.Init(); !errors.Is(err, ErrDriverNotResident) {
		t.Fatalf("Init: %v", err)
	}
	if k.inject(RawKey{Code: ScanA, State: RawKeyDown}) {
		t.Fatal("event accepted before driver started")
	}
	if _, ok := k.ReadRaw(); ok {
		t.Fatal("read from stopped driver")
	}
}

func TestHostKeyboardFIFO(t *testing.T) {
	k := startedKeyboard(t)
	evs := TypeRune('Q')
	for _, ev := range evs {
		if !k.inject(ev) {
			t.Fatalf("inject %v rejected", ev)
		}
	}
	for i, want := range evs {
		got, ok := k.ReadRaw()
		if !ok || got != want {
			t.Fatalf("event %d = %v,%v want %v", i, got, ok, want)
		}
	}
	if _, ok := k.ReadRaw(); ok {
		t.Fatal("queue not empty")
	}
}

func TestHostKeyboardRingFull(t *testing.T) {
	k := startedKeyboard(t)
	for i := 0; i < rawRingSlots; i++ {
		if !k.inject(RawKey{Code: ScanA, State: RawKeyDown}) {
			t.Fatalf("inject %d rejected", i)
		}
	}
	if k.inject(RawKey{Code: ScanA + 1, State: RawKeyDown}) {
		t.Fatal("inject into full ring accepted")
	}
	if err := k.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := k.ReadRaw(); ok {
		t.Fatal("events survived Close")
	}
}

func TestHostKeyboardDecodedModeHidesRaw(t *testing.T) {
	k := newHostKeyboard()
	k.setResident(true)
	if _, err := k.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	k.inject(RawKey{Code: ScanA, State: RawKeyDown})
	if _, ok := k.ReadRaw(); ok {
		t.Fatal("raw event read in decoded mode")
	}
}
