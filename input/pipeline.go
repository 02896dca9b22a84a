// Package input turns raw keyboard scan codes into per-frame key state and
// key/char press queues.
package input

import (
	"io"

	"emotion/hal"

	log "github.com/sirupsen/logrus"
)

// DefaultQueueSize is the capacity of each press queue.
const DefaultQueueSize = 16

// KeyState holds the key arrays for the current and previous poll.
type KeyState struct {
	previous [MaxKeys]bool
	current  [MaxKeys]bool
	repeat   [MaxKeys]bool
}

// Options configures a Pipeline.
type Options struct {
	KeyQueue  int
	CharQueue int
	Log       log.FieldLogger
}

// Pipeline owns the key state and both press queues. It is not safe for
// concurrent use: Poll and the accessors run on the frame goroutine.
type Pipeline struct {
	drv hal.KeyboardDriver
	log log.FieldLogger

	keys    KeyState
	pressed *Queue[KeyCode]
	chars   *Queue[rune]

	Mouse Mouse

	unmapped uint64
}

// New returns a pipeline reading from drv.
func New(drv hal.KeyboardDriver, opt Options) *Pipeline {
	if opt.KeyQueue <= 0 {
		opt.KeyQueue = DefaultQueueSize
	}
	if opt.CharQueue <= 0 {
		opt.CharQueue = DefaultQueueSize
	}
	if opt.Log == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		opt.Log = l
	}
	return &Pipeline{
		drv:     drv,
		log:     opt.Log,
		pressed: NewQueue[KeyCode](opt.KeyQueue),
		chars:   NewQueue[rune](opt.CharQueue),
		Mouse:   newMouse(),
	}
}

// Poll starts a new frame: current state becomes previous, both queues are
// cleared, and every pending raw event is applied in arrival order.
func (p *Pipeline) Poll() {
	p.keys.previous = p.keys.current
	p.keys.repeat = [MaxKeys]bool{}
	p.pressed.Clear()
	p.chars.Clear()
	p.Mouse.frame()

	if p.drv == nil {
		return
	}
	for {
		ev, ok := p.drv.ReadRaw()
		if !ok {
			return
		}
		p.apply(ev)
	}
}

func (p *Pipeline) apply(ev hal.RawKey) {
	k, isChar, ok := Translate(ev.Code)
	if !ok {
		p.unmapped++
		p.log.Infof("PLATFORM: PollInputEvents: unmapped key %d", ev.Code)
		return
	}
	down := ev.Down()

	if down && p.keys.current[k] {
		p.keys.repeat[k] = true
	}
	if down && !p.keys.current[k] {
		p.pressed.Push(k)
	}
	if down && isChar {
		p.chars.Push(charFor(k, p.shiftDown()))
	}
	p.keys.current[k] = down
}

func (p *Pipeline) shiftDown() bool {
	return p.keys.current[KeyLeftShift] || p.keys.current[KeyRightShift]
}

// ClearShift releases both shift keys, as after the keyboard driver starts.
func (p *Pipeline) ClearShift() {
	p.keys.current[KeyLeftShift] = false
	p.keys.current[KeyRightShift] = false
}

// Reset drops all key state and queued presses.
func (p *Pipeline) Reset() {
	p.keys = KeyState{}
	p.pressed.Clear()
	p.chars.Clear()
}

func (p *Pipeline) IsKeyDown(k KeyCode) bool {
	return k.Valid() && p.keys.current[k]
}

func (p *Pipeline) IsKeyUp(k KeyCode) bool {
	return !p.IsKeyDown(k)
}

// IsKeyPressed reports a key that went down since the previous poll.
func (p *Pipeline) IsKeyPressed(k KeyCode) bool {
	return k.Valid() && !p.keys.previous[k] && p.keys.current[k]
}

// IsKeyPressedRepeat reports a key the keyboard re-sent as down this frame.
func (p *Pipeline) IsKeyPressedRepeat(k KeyCode) bool {
	return k.Valid() && p.keys.repeat[k]
}

// IsKeyReleased reports a key that went up since the previous poll.
func (p *Pipeline) IsKeyReleased(k KeyCode) bool {
	return k.Valid() && p.keys.previous[k] && !p.keys.current[k]
}

// GetKeyPressed pops the oldest key press, or KeyNull when none is left.
func (p *Pipeline) GetKeyPressed() KeyCode {
	k, _ := p.pressed.Pop()
	return k
}

// GetCharPressed pops the oldest character, or 0 when none is left.
func (p *Pipeline) GetCharPressed() rune {
	c, _ := p.chars.Pop()
	return c
}

// PressedKeys returns this frame's key presses without consuming them.
func (p *Pipeline) PressedKeys() []KeyCode { return p.pressed.Snapshot() }

// PressedChars returns this frame's characters without consuming them.
func (p *Pipeline) PressedChars() []rune { return p.chars.Snapshot() }

// AnyKeyDown reports whether any key is held.
func (p *Pipeline) AnyKeyDown() bool {
	for _, d := range p.keys.current {
		if d {
			return true
		}
	}
	return false
}

// Unmapped counts raw codes dropped since the pipeline was created.
func (p *Pipeline) Unmapped() uint64 { return p.unmapped }
