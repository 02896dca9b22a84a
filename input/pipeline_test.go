package input

import (
	"testing"

	"emotion/hal"

	"github.com/sirupsen/logrus/hooks/test"
)

// fakeDriver replays queued raw events.
type fakeDriver struct {
	evs []hal.RawKey
}

func (d *fakeDriver) Init() (int, error)                     { return 1, nil }
func (d *fakeDriver) SetReadMode(hal.ReadMode) error         { return nil }
func (d *fakeDriver) SetBlockingMode(hal.BlockingMode) error { return nil }
func (d *fakeDriver) Close() error                           { return nil }

func (d *fakeDriver) ReadRaw() (hal.RawKey, bool) {
	if len(d.evs) == 0 {
		return hal.RawKey{}, false
	}
	ev := d.evs[0]
	d.evs = d.evs[1:]
	return ev, true
}

func (d *fakeDriver) push(evs ...hal.RawKey) { d.evs = append(d.evs, evs...) }

func down(code uint8) hal.RawKey { return hal.RawKey{Code: code, State: hal.RawKeyDown} }
func up(code uint8) hal.RawKey   { return hal.RawKey{Code: code, State: hal.RawKeyUp} }

func newTestPipeline() (*Pipeline, *fakeDriver) {
	drv := &fakeDriver{}
	return New(drv, Options{}), drv
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		code uint8
		key  KeyCode
		char bool
		ok   bool
	}{
		{4, KeyA, true, true},
		{29, KeyZ, true, true},
		{30, KeyOne, true, true},
		{38, KeyNine, true, true},
		{39, KeyZero, true, true},
		{40, KeyEnter, false, true},
		{42, KeyBackspace, false, true},
		{44, KeySpace, true, true},
		{79, KeyRight, false, true},
		{80, KeyLeft, false, true},
		{81, KeyDown, false, true},
		{82, KeyUp, false, true},
		{225, KeyLeftShift, false, true},
		{229, KeyRightShift, false, true},
		{0, KeyNull, false, false},
		{41, KeyNull, false, false},
		{43, KeyNull, false, false},
		{224, KeyNull, false, false},
		{255, KeyNull, false, false},
	}
	for _, tc := range tests {
		k, char, ok := Translate(tc.code)
		if k != tc.key || char != tc.char || ok != tc.ok {
			t.Errorf("Translate(%d) = %d,%v,%v want %d,%v,%v", tc.code, k, char, ok, tc.key, tc.char, tc.ok)
		}
	}
}

func TestDoubleDownEdge(t *testing.T) {
	p, drv := newTestPipeline()
	drv.push(down(4), down(4))
	p.Poll()

	if got := p.PressedKeys(); len(got) != 1 || got[0] != KeyA {
		t.Fatalf("pressed = %v, want [A]", got)
	}
	if got := p.PressedChars(); len(got) != 2 || got[0] != 'a' || got[1] != 'a' {
		t.Fatalf("chars = %q, want \"aa\"", got)
	}
	if !p.IsKeyPressedRepeat(KeyA) {
		t.Fatal("second down not flagged as repeat")
	}
}

func TestShiftRemap(t *testing.T) {
	tests := []struct {
		name string
		evs  []hal.RawKey
		want rune
	}{
		{"lowercase", []hal.RawKey{down(4)}, 97},
		{"left shift letter", []hal.RawKey{down(225), down(4)}, 65},
		{"right shift letter", []hal.RawKey{down(229), down(4)}, 65},
		{"digit", []hal.RawKey{down(30)}, '1'},
		{"right shift digit", []hal.RawKey{down(229), down(30)}, 33},
		{"shift zero", []hal.RawKey{down(225), down(39)}, ' '},
		{"space", []hal.RawKey{down(44)}, ' '},
		{"shift released", []hal.RawKey{down(225), up(225), down(4)}, 'a'},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, drv := newTestPipeline()
			drv.push(tc.evs...)
			p.Poll()
			if got := p.GetCharPressed(); got != tc.want {
				t.Fatalf("char = %d, want %d", got, tc.want)
			}
			if got := p.GetCharPressed(); got != 0 {
				t.Fatalf("extra char %d", got)
			}
		})
	}
}

func TestShiftHeldAcrossPolls(t *testing.T) {
	p, drv := newTestPipeline()
	drv.push(down(225))
	p.Poll()
	drv.push(down(4))
	p.Poll()
	if got := p.GetCharPressed(); got != 'A' {
		t.Fatalf("char = %q, want 'A'", got)
	}
}

func TestQueueReset(t *testing.T) {
	p, drv := newTestPipeline()
	drv.push(down(4), down(5), up(4))
	p.Poll()
	if len(p.PressedKeys()) == 0 || len(p.PressedChars()) == 0 {
		t.Fatal("first poll produced nothing")
	}
	p.Poll()
	if n := len(p.PressedKeys()); n != 0 {
		t.Fatalf("%d key presses survived poll", n)
	}
	if n := len(p.PressedChars()); n != 0 {
		t.Fatalf("%d chars survived poll", n)
	}
	if p.GetKeyPressed() != KeyNull {
		t.Fatal("GetKeyPressed on empty queue")
	}
}

func TestOverflowSafety(t *testing.T) {
	p, drv := newTestPipeline()
	var want []KeyCode
	for code := uint8(4); code <= 29; code++ {
		drv.push(down(code))
		want = append(want, KeyCode(code)+61)
	}
	p.Poll()

	got := p.PressedKeys()
	if len(got) != DefaultQueueSize {
		t.Fatalf("queue len = %d, want %d", len(got), DefaultQueueSize)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("entry %d = %d, want %d", i, got[i], want[i])
		}
	}
	if n := len(p.PressedChars()); n != DefaultQueueSize {
		t.Fatalf("char queue len = %d", n)
	}
	// State still tracks every key, queued or not.
	if !p.IsKeyDown(KeyZ) {
		t.Fatal("dropped press lost its key state")
	}
}

func TestEdgesAcrossPolls(t *testing.T) {
	p, drv := newTestPipeline()
	drv.push(down(40))
	p.Poll()
	if !p.IsKeyPressed(KeyEnter) || !p.IsKeyDown(KeyEnter) {
		t.Fatal("enter not pressed")
	}
	p.Poll()
	if p.IsKeyPressed(KeyEnter) || !p.IsKeyDown(KeyEnter) {
		t.Fatal("held enter reported as new press")
	}
	drv.push(up(40))
	p.Poll()
	if !p.IsKeyReleased(KeyEnter) || !p.IsKeyUp(KeyEnter) {
		t.Fatal("enter not released")
	}
	if len(p.PressedChars()) != 0 {
		t.Fatal("enter produced a character")
	}
}

func TestUnmappedDropped(t *testing.T) {
	logger, hook := test.NewNullLogger()
	drv := &fakeDriver{}
	p := New(drv, Options{Log: logger})
	drv.push(down(0), down(41), up(200))
	p.Poll()

	if p.AnyKeyDown() {
		t.Fatal("unmapped code changed key state")
	}
	if p.IsKeyDown(KeyNull) {
		t.Fatal("KeyNull reported down")
	}
	if len(p.PressedKeys()) != 0 || len(p.PressedChars()) != 0 {
		t.Fatal("unmapped code queued")
	}
	if p.Unmapped() != 3 || len(hook.AllEntries()) != 3 {
		t.Fatalf("unmapped = %d, log lines = %d", p.Unmapped(), len(hook.AllEntries()))
	}
	if got := hook.LastEntry().Message; got != "PLATFORM: PollInputEvents: unmapped key 200" {
		t.Fatalf("log = %q", got)
	}
}

func TestHostKeyboardEndToEnd(t *testing.T) {
	h := hal.NewHost(hal.HostConfig{MemoryCardPath: t.TempDir() + "/mc0.bin"})
	p := New(h.Keyboard(), Options{})
	if hal.InjectKey(h, down(4)) {
		t.Fatal("host keyboard accepted input before driver start")
	}
	p.Poll()
	if p.AnyKeyDown() {
		t.Fatal("key state from stopped driver")
	}
}

func TestMouse(t *testing.T) {
	p, _ := newTestPipeline()
	p.Mouse.SetPosition(320, 112)
	p.Poll()
	if d := p.Mouse.Delta(); d != (Vec2{}) {
		t.Fatalf("delta after SetPosition = %+v", d)
	}
	p.Mouse.SetScale(2, 2)
	if pos := p.Mouse.Position(); pos != (Vec2{640, 224}) {
		t.Fatalf("scaled position = %+v", pos)
	}
}
