//go:build !ps2

package hal

import (
	"fmt"
	"os"
	"sync"
)

// HostConfig tunes the simulated console.
type HostConfig struct {
	// MemoryCardPath is the backing file for memory card slot 0.
	// Empty falls back to $EMOTION_MC_PATH, then "mc0.bin".
	MemoryCardPath string
	// ResetLatency is how many Reset/Sync polls the simulated co-processor
	// takes to acknowledge each handshake phase.
	ResetLatency int
	// Stuck makes the simulated co-processor never acknowledge a reset.
	Stuck bool
}

type hostHAL struct {
	logger *hostLogger
	iop    *hostIOP
	kbd    *hostKeyboard
	gs     *hostGS
	mc     *hostMemoryCard
	clock  *hostClock
}

// New returns a host HAL implementation with default settings.
func New() HAL {
	return NewHost(HostConfig{})
}

// NewHost returns a host HAL that simulates the console hardware.
func NewHost(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	logger := &hostLogger{w: os.Stdout}
	kbd := newHostKeyboard()
	mc := newHostMemoryCard(cfg.MemoryCardPath)
	return &hostHAL{
		logger: logger,
		iop:    newHostIOP(cfg, kbd, mc),
		kbd:    kbd,
		gs:     newHostGS(),
		mc:     mc,
		clock:  newHostClock(),
	}
}

func (h *hostHAL) Logger() Logger           { return h.logger }
func (h *hostHAL) IOP() IOP                 { return h.iop }
func (h *hostHAL) Keyboard() KeyboardDriver { return h.kbd }
func (h *hostHAL) GS() GS                   { return h.gs }
func (h *hostHAL) MemoryCard() MemoryCard   { return h.mc }
func (h *hostHAL) Clock() Clock             { return h.clock }

// InjectKey queues a raw event on a host HAL's keyboard driver, as if the
// USB keyboard had reported it. It reports false when h is not a host HAL
// or the driver queue is full.
func InjectKey(h HAL, k RawKey) bool {
	hh, ok := h.(*hostHAL)
	if !ok {
		return false
	}
	return hh.kbd.inject(k)
}

// LoadedModules returns the names of the modules resident on a host HAL's
// simulated co-processor, in load order.
func LoadedModules(h HAL) []string {
	hh, ok := h.(*hostHAL)
	if !ok {
		return nil
	}
	return hh.iop.loadedModules()
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
