// Command kbdprobe types into the input pipeline from a terminal and
// prints what the framework would see: raw scan codes, key codes and the
// pressed-key and character queues of each frame.
package main

import (
	"flag"
	"fmt"
	"os"

	"emotion/hal"
	"emotion/input"
	"emotion/internal/diag"

	tty "github.com/mattn/go-tty"
	log "github.com/sirupsen/logrus"
)

// probeKeyboard is a keyboard driver fed directly by the terminal reader.
type probeKeyboard struct {
	queue []hal.RawKey
}

func (k *probeKeyboard) Init() (int, error)                     { return 1, nil }
func (k *probeKeyboard) SetReadMode(hal.ReadMode) error         { return nil }
func (k *probeKeyboard) SetBlockingMode(hal.BlockingMode) error { return nil }
func (k *probeKeyboard) Close() error                           { return nil }

func (k *probeKeyboard) ReadRaw() (hal.RawKey, bool) {
	if len(k.queue) == 0 {
		return hal.RawKey{}, false
	}
	ev := k.queue[0]
	k.queue = k.queue[1:]
	return ev, true
}

func main() {
	var (
		level = flag.String("log", "debug", "Log level.")
		queue = flag.Int("queue", 16, "Press queue capacity.")
	)
	flag.Parse()

	lvl, err := diag.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	logger := diag.New(os.Stderr, lvl)

	t, err := tty.Open()
	if err != nil {
		logger.Fatalf("open tty: %v", err)
	}
	defer t.Close()
	restore := t.MustRaw()
	defer func() { _ = restore() }()

	kbd := &probeKeyboard{}
	p := input.New(kbd, input.Options{KeyQueue: *queue, CharQueue: *queue, Log: logger})
	out := t.Output()
	fmt.Fprint(out, "kbdprobe: type keys, ^C or ^D to quit\r\n")

	for {
		r, err := t.ReadRune()
		if err != nil {
			logger.WithError(err).Error("read tty")
			return
		}
		if r == 0x03 || r == 0x04 {
			return
		}
		if !probe(out, logger, kbd, p, r) {
			fmt.Fprintf(out, "%q: no scan code\r\n", r)
		}
	}
}

// probe types r as one frame and reports it. It returns false when r has
// no key on a US keyboard.
func probe(out *os.File, l log.FieldLogger, kbd *probeKeyboard, p *input.Pipeline, r rune) bool {
	events := hal.TypeRune(r)
	if len(events) == 0 {
		return false
	}
	kbd.queue = append(kbd.queue, events...)
	for _, ev := range events {
		k, _, ok := input.Translate(ev.Code)
		state := "up"
		if ev.Down() {
			state = "down"
		}
		if ok {
			fmt.Fprintf(out, "  scan 0x%02x %-4s -> key %d\r\n", ev.Code, state, k)
		} else {
			fmt.Fprintf(out, "  scan 0x%02x %-4s -> unmapped\r\n", ev.Code, state)
		}
	}
	p.Poll()
	l.Debugf("frame: keys=%v chars=%q unmapped=%d", p.PressedKeys(), string(p.PressedChars()), p.Unmapped())
	return true
}
