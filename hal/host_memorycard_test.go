//go:build !ps2

package hal

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestHostMemoryCardClosedUntilOpened(t *testing.T) {
	c := newHostMemoryCard(filepath.Join(t.TempDir(), "mc.bin"))
	if _, err := c.ReadAt(make([]byte, 4), 0); !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("ReadAt before open: %v", err)
	}
	if c.SizeBytes() != 0 {
		t.Fatalf("size before open = %d", c.SizeBytes())
	}
}

func TestHostMemoryCardWriteNeedsErase(t *testing.T) {
	c := newHostMemoryCard(filepath.Join(t.TempDir(), "mc.bin"))
	if err := c.open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := c.Erase(0, hostCardEraseBlockBytes); err != nil {
		t.Fatalf("Erase: %v", err)
	}
	if _, err := c.WriteAt([]byte{0x0F}, 0); err != nil {
		t.Fatalf("WriteAt: %v", err)
	}
	if _, err := c.WriteAt([]byte{0xF0}, 0); !errors.Is(err, ErrCardWriteRequiresErase) {
		t.Fatalf("rewrite without erase: %v", err)
	}

	buf := make([]byte, 2)
	if _, err := c.ReadAt(buf, 0); err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if buf[0] != 0x0F || buf[1] != 0xFF {
		t.Fatalf("read back %x", buf)
	}

	if err := c.Erase(100, hostCardEraseBlockBytes); err == nil {
		t.Fatal("unaligned erase accepted")
	}
}
