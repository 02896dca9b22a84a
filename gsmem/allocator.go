// Package gsmem divides the GS video memory into slots and binds display,
// depth and texture areas to them.
package gsmem

import (
	"errors"
	"fmt"
)

const (
	// PageBytes is one allocation unit.
	PageBytes = 8192
	// PoolPages is the whole 4 MiB video memory.
	PoolPages = 512
)

var (
	ErrOverlap       = errors.New("gsmem: slot overlaps an existing slot")
	ErrPoolExhausted = errors.New("gsmem: video memory exhausted")
	ErrUnknownSlot   = errors.New("gsmem: unknown slot")
	ErrUnknownArea   = errors.New("gsmem: unknown area")
	ErrSlotBound     = errors.New("gsmem: slot already bound to an area")
	ErrAreaTooLarge  = errors.New("gsmem: area does not fit its slot")
	ErrAreaUnbound   = errors.New("gsmem: area not bound to a slot")
	ErrBadFormat     = errors.New("gsmem: invalid pixel storage mode")
)

// SlotHandle and AreaHandle index into the allocator.
type (
	SlotHandle int
	AreaHandle int
)

// NoSlot marks an area with no backing slot.
const NoSlot SlotHandle = -1

// Slot is a contiguous run of pages.
type Slot struct {
	Offset int
	Pages  int
	Format PSM
	Locked bool
}

// End is the first page after the slot.
func (s Slot) End() int { return s.Offset + s.Pages }

// Bytes is the slot size in bytes.
func (s Slot) Bytes() int { return s.Pages * PageBytes }

func (s Slot) overlaps(o Slot) bool {
	return s.Offset < o.End() && o.Offset < s.End()
}

// Area is a width x height surface placed in a slot.
type Area struct {
	Width  int
	Height int
	Format PSM
	Slot   SlotHandle
}

// Bytes is the video memory the area needs.
func (a Area) Bytes() int {
	return (a.Width*a.Height*a.Format.StorageBits() + 7) / 8
}

// Pages is Bytes rounded up to whole pages.
func (a Area) Pages() int {
	return (a.Bytes() + PageBytes - 1) / PageBytes
}

// BufferMode selects interlaced or progressive scan for a buffer set.
type BufferMode uint8

const (
	NonInterlaced BufferMode = iota
	Interlaced
)

func (m BufferMode) String() string {
	if m == Interlaced {
		return "interlaced"
	}
	return "non-interlaced"
}

// DrawSet is the render target set.
type DrawSet struct {
	Mode               BufferMode
	Front, Back, Depth AreaHandle
}

// DisplaySet is the scan-out set.
type DisplaySet struct {
	Mode        BufferMode
	Front, Back AreaHandle
}

type slotEntry struct {
	Slot
	area      AreaHandle
	bound     bool
	allocated bool
}

// Allocator tracks slots and areas for one video memory pool. It keeps book
// only; the caller mirrors the result onto the hardware.
type Allocator struct {
	pool  int
	slots []slotEntry
	areas []Area
	names map[string]SlotHandle

	draw       DrawSet
	display    DisplaySet
	hasDraw    bool
	hasDisplay bool
}

// New returns an allocator over poolPages pages.
func New(poolPages int) *Allocator {
	if poolPages <= 0 {
		poolPages = PoolPages
	}
	return &Allocator{pool: poolPages}
}

// PoolPages returns the pool size.
func (a *Allocator) PoolPages() int { return a.pool }

// AddSlot reserves pages [offset, offset+pages).
func (a *Allocator) AddSlot(offset, pages int, format PSM) (SlotHandle, error) {
	if !format.Valid() {
		return NoSlot, fmt.Errorf("slot at %d: %w", offset, ErrBadFormat)
	}
	s := Slot{Offset: offset, Pages: pages, Format: format}
	if offset < 0 || pages <= 0 || s.End() > a.pool {
		return NoSlot, fmt.Errorf("slot %d+%d in %d pages: %w", offset, pages, a.pool, ErrPoolExhausted)
	}
	for i, e := range a.slots {
		if s.overlaps(e.Slot) {
			return NoSlot, fmt.Errorf("slot %d+%d and slot %d (%d+%d): %w",
				offset, pages, i, e.Offset, e.Pages, ErrOverlap)
		}
	}
	a.slots = append(a.slots, slotEntry{Slot: s})
	return SlotHandle(len(a.slots) - 1), nil
}

func (a *Allocator) slot(h SlotHandle) (*slotEntry, error) {
	if h < 0 || int(h) >= len(a.slots) {
		return nil, fmt.Errorf("slot %d: %w", int(h), ErrUnknownSlot)
	}
	return &a.slots[h], nil
}

// LockSlot withholds a slot from Alloc.
func (a *Allocator) LockSlot(h SlotHandle) error {
	e, err := a.slot(h)
	if err != nil {
		return err
	}
	e.Locked = true
	return nil
}

// CreateArea registers an unbound area.
func (a *Allocator) CreateArea(width, height int, format PSM) AreaHandle {
	a.areas = append(a.areas, Area{Width: width, Height: height, Format: format, Slot: NoSlot})
	return AreaHandle(len(a.areas) - 1)
}

func (a *Allocator) area(h AreaHandle) (*Area, error) {
	if h < 0 || int(h) >= len(a.areas) {
		return nil, fmt.Errorf("area %d: %w", int(h), ErrUnknownArea)
	}
	return &a.areas[h], nil
}

// BindAreaToSlot places an area in a slot. A slot holds one area.
func (a *Allocator) BindAreaToSlot(ah AreaHandle, sh SlotHandle) error {
	ar, err := a.area(ah)
	if err != nil {
		return err
	}
	e, err := a.slot(sh)
	if err != nil {
		return err
	}
	if e.bound {
		return fmt.Errorf("slot %d holds area %d: %w", int(sh), int(e.area), ErrSlotBound)
	}
	if ar.Width <= 0 || ar.Height <= 0 || !ar.Format.Valid() {
		return fmt.Errorf("area %d: %dx%d %s: %w", int(ah), ar.Width, ar.Height, ar.Format, ErrBadFormat)
	}
	if ar.Pages() > e.Pages {
		return fmt.Errorf("area %d needs %d pages, slot %d has %d: %w",
			int(ah), ar.Pages(), int(sh), e.Pages, ErrAreaTooLarge)
	}
	if ar.Slot != NoSlot {
		prev := &a.slots[ar.Slot]
		prev.bound = false
		prev.area = 0
	}
	e.bound = true
	e.area = ah
	ar.Slot = sh
	return nil
}

func (a *Allocator) boundArea(h AreaHandle) error {
	ar, err := a.area(h)
	if err != nil {
		return err
	}
	if ar.Slot == NoSlot {
		return fmt.Errorf("area %d: %w", int(h), ErrAreaUnbound)
	}
	return nil
}

// SetDrawBuffers selects the render targets.
func (a *Allocator) SetDrawBuffers(mode BufferMode, front, back, depth AreaHandle) error {
	for _, h := range []AreaHandle{front, back, depth} {
		if err := a.boundArea(h); err != nil {
			return fmt.Errorf("draw buffers: %w", err)
		}
	}
	a.draw = DrawSet{Mode: mode, Front: front, Back: back, Depth: depth}
	a.hasDraw = true
	return nil
}

// SetDisplayBuffers selects the scan-out buffers.
func (a *Allocator) SetDisplayBuffers(mode BufferMode, front, back AreaHandle) error {
	for _, h := range []AreaHandle{front, back} {
		if err := a.boundArea(h); err != nil {
			return fmt.Errorf("display buffers: %w", err)
		}
	}
	a.display = DisplaySet{Mode: mode, Front: front, Back: back}
	a.hasDisplay = true
	return nil
}

// DrawBuffers returns the render target set, if one was set.
func (a *Allocator) DrawBuffers() (DrawSet, bool) { return a.draw, a.hasDraw }

// DisplayBuffers returns the scan-out set, if one was set.
func (a *Allocator) DisplayBuffers() (DisplaySet, bool) { return a.display, a.hasDisplay }

// Swap exchanges front and back in both sets.
func (a *Allocator) Swap() {
	a.draw.Front, a.draw.Back = a.draw.Back, a.draw.Front
	a.display.Front, a.display.Back = a.display.Back, a.display.Front
}

// Alloc hands out the first unlocked, unbound, free slot with at least
// pages pages and a matching format.
func (a *Allocator) Alloc(pages int, format PSM) (SlotHandle, error) {
	if pages <= 0 {
		return NoSlot, fmt.Errorf("alloc %d pages: %w", pages, ErrPoolExhausted)
	}
	for i := range a.slots {
		e := &a.slots[i]
		if e.Locked || e.bound || e.allocated {
			continue
		}
		if e.Pages < pages || e.Format != format {
			continue
		}
		e.allocated = true
		return SlotHandle(i), nil
	}
	return NoSlot, fmt.Errorf("alloc %d pages %s: %w", pages, format, ErrPoolExhausted)
}

// Free returns a slot handed out by Alloc.
func (a *Allocator) Free(h SlotHandle) error {
	e, err := a.slot(h)
	if err != nil {
		return err
	}
	if !e.allocated {
		return fmt.Errorf("free slot %d: not allocated: %w", int(h), ErrUnknownSlot)
	}
	e.allocated = false
	return nil
}

// Slot returns a slot by handle.
func (a *Allocator) Slot(h SlotHandle) (Slot, error) {
	e, err := a.slot(h)
	if err != nil {
		return Slot{}, err
	}
	return e.Slot, nil
}

// Area returns an area by handle.
func (a *Allocator) Area(h AreaHandle) (Area, error) {
	ar, err := a.area(h)
	if err != nil {
		return Area{}, err
	}
	return *ar, nil
}

// FreePages counts pages not covered by any slot.
func (a *Allocator) FreePages() int {
	used := 0
	for _, e := range a.slots {
		used += e.Pages
	}
	return a.pool - used
}
