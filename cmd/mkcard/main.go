// Command mkcard writes a blank, fully erased memory card image for the
// host simulator, optionally seeded with files laid out back to back from
// the first erase block.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"emotion/internal/diag"

	log "github.com/sirupsen/logrus"
)

const (
	defaultCardPath  = "mc0.bin"
	defaultCardSize  = 8 * 1024 * 1024
	defaultEraseSize = 8192
)

var errWriteRequiresErase = errors.New("card write requires erase")

type cardFile struct {
	f         *os.File
	size      uint32
	eraseSize uint32

	scratch []byte
}

func createCardFile(path string, size, eraseSize uint32) (*cardFile, error) {
	if eraseSize == 0 || eraseSize%512 != 0 {
		return nil, fmt.Errorf("card: invalid erase size %d", eraseSize)
	}
	if size == 0 || size%eraseSize != 0 {
		return nil, fmt.Errorf("card: size %d not multiple of erase size %d", size, eraseSize)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open card image %q: %w", path, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("truncate card image %q to %d: %w", path, size, err)
	}

	cf := &cardFile{f: f, size: size, eraseSize: eraseSize, scratch: make([]byte, eraseSize)}
	for i := range cf.scratch {
		cf.scratch[i] = 0xFF
	}
	if err := cf.Erase(0, size); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("erase card image %q: %w", path, err)
	}
	return cf, nil
}

func (c *cardFile) Close() error { return c.f.Close() }

// WriteAt only clears bits, like the card's flash.
func (c *cardFile) WriteAt(p []byte, off uint32) (int, error) {
	if off >= c.size || uint64(off)+uint64(len(p)) > uint64(c.size) {
		return 0, fmt.Errorf("card write %d bytes at %d: %w", len(p), off, os.ErrInvalid)
	}
	prev := make([]byte, len(p))
	if _, err := c.f.ReadAt(prev, int64(off)); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("card read before write at %d: %w", off, err)
	}
	for i := range p {
		if prev[i]&p[i] != p[i] {
			return 0, errWriteRequiresErase
		}
	}
	return c.f.WriteAt(p, int64(off))
}

func (c *cardFile) Erase(off, size uint32) error {
	if off%c.eraseSize != 0 || size%c.eraseSize != 0 || uint64(off)+uint64(size) > uint64(c.size) {
		return fmt.Errorf("card erase off=%d size=%d: %w", off, size, os.ErrInvalid)
	}
	for ; size > 0; size -= c.eraseSize {
		if _, err := c.f.WriteAt(c.scratch, int64(off)); err != nil {
			return fmt.Errorf("card erase block at %d: %w", off, err)
		}
		off += c.eraseSize
	}
	return nil
}

func main() {
	var (
		outPath   string
		srcDir    string
		cardSize  uint
		eraseSize uint
		level     string
	)
	flag.StringVar(&outPath, "out", defaultCardPath, "Output card image path.")
	flag.StringVar(&srcDir, "src", "", "Optional directory whose regular files are written into the image.")
	flag.UintVar(&cardSize, "size", defaultCardSize, "Card size (bytes).")
	flag.UintVar(&eraseSize, "erase", defaultEraseSize, "Erase block size (bytes).")
	flag.StringVar(&level, "log", "info", "Log level.")
	flag.Parse()

	lvl, err := diag.ParseLevel(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	logger := diag.New(os.Stderr, lvl)

	if err := run(logger, outPath, srcDir, uint32(cardSize), uint32(eraseSize)); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func run(l log.FieldLogger, outPath, srcDir string, size, eraseSize uint32) error {
	cf, err := createCardFile(outPath, size, eraseSize)
	if err != nil {
		return err
	}
	defer func() { _ = cf.Close() }()
	l.Infof("MC: %s: %d KiB, %d byte erase blocks", outPath, size/1024, eraseSize)
	if srcDir == "" {
		return nil
	}

	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return fmt.Errorf("read src %q: %w", srcDir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	off := uint32(0)
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(srcDir, e.Name()))
		if err != nil {
			return err
		}
		if uint64(off)+uint64(len(data)) > uint64(size) {
			return fmt.Errorf("%s does not fit at offset %d", e.Name(), off)
		}
		if _, err := cf.WriteAt(data, off); err != nil {
			return fmt.Errorf("write %s: %w", e.Name(), err)
		}
		l.Infof("MC: %s at 0x%06x (%d bytes)", e.Name(), off, len(data))
		// Next file starts on a fresh erase block.
		off += (uint32(len(data)) + eraseSize - 1) / eraseSize * eraseSize
	}
	return nil
}
