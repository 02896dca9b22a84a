//go:build !ps2

package hal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	hostCardDefaultPath      = "mc0.bin"
	hostCardDefaultSizeBytes = 8 * 1024 * 1024
	hostCardEraseBlockBytes  = 8192
)

var ErrCardWriteRequiresErase = errors.New("memory card write requires erase")

// hostMemoryCard backs memory card slot 0 with a file. The file is opened
// by McInit, so the card reads as absent until the card server starts.
type hostMemoryCard struct {
	mu      sync.Mutex
	path    string
	f       *os.File
	size    uint32
	scratch [hostCardEraseBlockBytes]byte
}

func newHostMemoryCard(path string) *hostMemoryCard {
	if path == "" {
		path = os.Getenv("EMOTION_MC_PATH")
	}
	if path == "" {
		path = hostCardDefaultPath
	}
	mc := &hostMemoryCard{path: path}
	for i := range mc.scratch {
		mc.scratch[i] = 0xFF
	}
	return mc
}

func (c *hostMemoryCard) open() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f != nil {
		return nil
	}

	f, err := os.OpenFile(c.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("memory card %s: %w", c.path, err)
	}

	size := uint32(hostCardDefaultSizeBytes)
	if st, err := f.Stat(); err == nil && st.Size() > 0 {
		if st.Size() > int64(^uint32(0)) {
			_ = f.Close()
			return fmt.Errorf("memory card %s: image too large", c.path)
		}
		size = uint32(st.Size())
	} else if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		return fmt.Errorf("memory card %s: %w", c.path, err)
	}

	c.f = f
	c.size = size
	return nil
}

func (c *hostMemoryCard) SizeBytes() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *hostMemoryCard) EraseBlockBytes() uint32 { return hostCardEraseBlockBytes }

func (c *hostMemoryCard) ReadAt(p []byte, off uint32) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return 0, ErrNotImplemented
	}
	if off >= c.size {
		return 0, fmt.Errorf("memory card read at %d: %w", off, os.ErrInvalid)
	}
	if maxN := int(c.size - off); len(p) > maxN {
		p = p[:maxN]
	}
	return c.f.ReadAt(p, int64(off))
}

func (c *hostMemoryCard) WriteAt(p []byte, off uint32) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return 0, ErrNotImplemented
	}
	if off >= c.size {
		return 0, fmt.Errorf("memory card write at %d: %w", off, os.ErrInvalid)
	}
	if maxN := int(c.size - off); len(p) > maxN {
		p = p[:maxN]
	}

	// NAND semantics: a write may only clear bits.
	buf := make([]byte, len(p))
	if _, err := c.f.ReadAt(buf, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("memory card read before write at %d: %w", off, err)
	}
	for i := range p {
		if buf[i]&p[i] != p[i] {
			return 0, ErrCardWriteRequiresErase
		}
	}
	return c.f.WriteAt(p, int64(off))
}

func (c *hostMemoryCard) Erase(off, size uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return ErrNotImplemented
	}
	if size == 0 {
		return nil
	}
	if off%hostCardEraseBlockBytes != 0 || size%hostCardEraseBlockBytes != 0 {
		return fmt.Errorf("memory card erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	if off >= c.size || off+size > c.size {
		return fmt.Errorf("memory card erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	for size > 0 {
		if _, err := c.f.WriteAt(c.scratch[:], int64(off)); err != nil {
			return fmt.Errorf("memory card erase block at %d: %w", off, err)
		}
		off += hostCardEraseBlockBytes
		size -= hostCardEraseBlockBytes
	}
	return nil
}
