//go:build !ps2

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// TerminalKeys feeds keystrokes typed on the controlling terminal into a
// host keyboard driver. It is the headless stand-in for the USB keyboard.
type TerminalKeys struct {
	kbd *hostKeyboard
	in  io.Reader

	fd       int
	oldState *term.State

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}

	intrOnce sync.Once
	intr     chan struct{}
}

// NewTerminalKeys binds stdin to the keyboard of a host HAL.
func NewTerminalKeys(h HAL) (*TerminalKeys, error) {
	hh, ok := h.(*hostHAL)
	if !ok {
		return nil, fmt.Errorf("terminal keys: %w", ErrNotImplemented)
	}
	return &TerminalKeys{
		kbd:    hh.kbd,
		in:     os.Stdin,
		fd:     int(os.Stdin.Fd()),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		intr:   make(chan struct{}),
	}, nil
}

// Start puts the terminal in raw mode, when it is one, and begins reading.
// Call Stop to restore it.
func (t *TerminalKeys) Start() error {
	if term.IsTerminal(t.fd) {
		old, err := term.MakeRaw(t.fd)
		if err != nil {
			return fmt.Errorf("terminal keys: raw mode: %w", err)
		}
		t.oldState = old
	}

	go func() {
		defer close(t.done)
		var dec escapeDecoder
		buf := make([]byte, 64)
		for {
			n, err := t.in.Read(buf)
			for _, b := range buf[:n] {
				// Raw mode delivers ^C as a byte instead of a signal.
				if b == 0x03 {
					t.intrOnce.Do(func() { close(t.intr) })
					continue
				}
				for _, ev := range dec.feed(b) {
					t.kbd.inject(ev)
				}
			}
			if err != nil {
				return
			}
			select {
			case <-t.stopCh:
				return
			default:
			}
		}
	}()
	return nil
}

// Interrupted is closed when ^C is typed.
func (t *TerminalKeys) Interrupted() <-chan struct{} { return t.intr }

// Stop restores the terminal. The reader goroutine exits on its next read.
func (t *TerminalKeys) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
		if t.oldState != nil {
			_ = term.Restore(t.fd, t.oldState)
			t.oldState = nil
		}
	})
}

// escapeDecoder turns terminal bytes into raw key strokes, decoding the
// ANSI cursor-key sequences.
type escapeDecoder struct {
	state uint8
}

const (
	escIdle uint8 = iota
	escSeenEsc
	escSeenBracket
)

func (d *escapeDecoder) feed(b byte) []RawKey {
	switch d.state {
	case escSeenEsc:
		if b == '[' {
			d.state = escSeenBracket
			return nil
		}
		d.state = escIdle
		return append(Stroke(ScanEscape, false), TypeRune(rune(b))...)
	case escSeenBracket:
		d.state = escIdle
		switch b {
		case 'A':
			return Stroke(ScanUp, false)
		case 'B':
			return Stroke(ScanDown, false)
		case 'C':
			return Stroke(ScanRight, false)
		case 'D':
			return Stroke(ScanLeft, false)
		}
		return nil
	}
	if b == 0x1b {
		d.state = escSeenEsc
		return nil
	}
	return TypeRune(rune(b))
}
