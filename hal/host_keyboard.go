//go:build !ps2

package hal

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrDriverNotResident = errors.New("keyboard: driver module not resident")

const rawRingSlots = 64

// rawRing is a fixed-size single-producer, single-consumer queue of raw
// events. It never allocates and never blocks.
type rawRing struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [rawRingSlots]RawKey
}

func (r *rawRing) tryPush(k RawKey) bool {
	head := r.head.Load()
	if head-r.tail.Load() >= rawRingSlots {
		return false
	}
	r.slots[head%rawRingSlots] = k
	r.head.Store(head + 1)
	return true
}

func (r *rawRing) tryPop() (RawKey, bool) {
	tail := r.tail.Load()
	if tail == r.head.Load() {
		return RawKey{}, false
	}
	k := r.slots[tail%rawRingSlots]
	r.tail.Store(tail + 1)
	return k, true
}

func (r *rawRing) drain() {
	r.tail.Store(r.head.Load())
}

type hostKeyboard struct {
	mu       sync.Mutex
	resident bool
	started  bool
	mode     ReadMode
	blocking BlockingMode

	// Producers serialize on pushMu so the ring keeps a single writer.
	pushMu sync.Mutex
	ring   rawRing
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{}
}

func (k *hostKeyboard) setResident(v bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.resident = v
	if !v {
		k.started = false
	}
}

func (k *hostKeyboard) Init() (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.resident {
		return -1, ErrDriverNotResident
	}
	k.started = true
	k.mode = ReadModeDecoded
	k.blocking = Blocking
	return 1, nil
}

func (k *hostKeyboard) SetReadMode(m ReadMode) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.started {
		return ErrDriverNotResident
	}
	if m != k.mode {
		k.ring.drain()
	}
	k.mode = m
	return nil
}

func (k *hostKeyboard) SetBlockingMode(m BlockingMode) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if !k.started {
		return ErrDriverNotResident
	}
	k.blocking = m
	return nil
}

func (k *hostKeyboard) ReadRaw() (RawKey, bool) {
	k.mu.Lock()
	ready := k.started && k.mode == ReadModeRaw
	k.mu.Unlock()
	if !ready {
		return RawKey{}, false
	}
	return k.ring.tryPop()
}

func (k *hostKeyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.started = false
	k.ring.drain()
	return nil
}

// inject queues an event from a host input source. Events that arrive
// before the driver is started are dropped, like key presses made while
// the console is still booting.
func (k *hostKeyboard) inject(ev RawKey) bool {
	k.mu.Lock()
	started := k.started
	k.mu.Unlock()
	if !started {
		return false
	}
	k.pushMu.Lock()
	defer k.pushMu.Unlock()
	return k.ring.tryPush(ev)
}
