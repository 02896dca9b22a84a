package gsmem

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed default_layout.yaml
var defaultLayoutYAML []byte

// Role says what a layout slot is for.
type Role string

const (
	RoleFront   Role = "front"
	RoleBack    Role = "back"
	RoleDepth   Role = "depth"
	RoleFont    Role = "font"
	RoleTexture Role = "texture"
)

var ErrBadLayout = errors.New("gsmem: invalid layout")

// FrameSpec sizes the frame and depth areas placed in the locked slots.
type FrameSpec struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Format      PSM  `yaml:"format"`
	DepthFormat PSM  `yaml:"depth_format"`
	Interlaced  bool `yaml:"interlaced"`
}

// SlotSpec is one row of the layout table.
type SlotSpec struct {
	Name   string `yaml:"name"`
	Role   Role   `yaml:"role"`
	Offset int    `yaml:"offset"`
	Pages  int    `yaml:"pages"`
	Format PSM    `yaml:"format"`
	Locked bool   `yaml:"locked"`
}

func (s SlotSpec) slot() Slot {
	return Slot{Offset: s.Offset, Pages: s.Pages, Format: s.Format, Locked: s.Locked}
}

// Layout is a declarative video memory map.
type Layout struct {
	Frame FrameSpec  `yaml:"frame"`
	Slots []SlotSpec `yaml:"slots"`
}

// DefaultLayout returns the built-in table: double-buffered 640x224 frame
// plus depth, a font page pair and a ladder of texture slots.
func DefaultLayout() Layout {
	l, err := ParseLayout(defaultLayoutYAML)
	if err != nil {
		panic(fmt.Sprintf("gsmem: built-in layout: %v", err))
	}
	return l
}

// ParseLayout decodes a layout table. It does not validate it.
func ParseLayout(raw []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return Layout{}, fmt.Errorf("parse layout: %w", err)
	}
	return l, nil
}

// LoadLayout reads a layout file, or returns the built-in table when path
// is empty.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read layout %s: %w", path, err)
	}
	return ParseLayout(raw)
}

func (l Layout) role(r Role) (SlotSpec, int) {
	var found SlotSpec
	n := 0
	for _, s := range l.Slots {
		if s.Role == r {
			found = s
			n++
		}
	}
	return found, n
}

// Validate checks the table against a pool of poolPages pages: every slot
// inside the pool, no two slots overlapping, one locked slot each for the
// front, back and depth buffers, and the frame areas fitting them.
func (l Layout) Validate(poolPages int) error {
	f := l.Frame
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("frame %dx%d: %w", f.Width, f.Height, ErrBadLayout)
	}
	if !f.Format.Valid() || f.Format.IsDepth() {
		return fmt.Errorf("frame format %s: %w", f.Format, ErrBadFormat)
	}
	if !f.DepthFormat.Valid() || !f.DepthFormat.IsDepth() {
		return fmt.Errorf("depth format %s: %w", f.DepthFormat, ErrBadFormat)
	}

	names := make(map[string]bool, len(l.Slots))
	for _, s := range l.Slots {
		if s.Name == "" || names[s.Name] {
			return fmt.Errorf("slot name %q missing or repeated: %w", s.Name, ErrBadLayout)
		}
		names[s.Name] = true
		switch s.Role {
		case RoleFront, RoleBack, RoleDepth, RoleFont, RoleTexture:
		default:
			return fmt.Errorf("slot %s: role %q: %w", s.Name, s.Role, ErrBadLayout)
		}
		if !s.Format.Valid() {
			return fmt.Errorf("slot %s: %w", s.Name, ErrBadFormat)
		}
		if s.Offset < 0 || s.Pages <= 0 || s.Offset+s.Pages > poolPages {
			return fmt.Errorf("slot %s %d+%d in %d pages: %w", s.Name, s.Offset, s.Pages, poolPages, ErrPoolExhausted)
		}
	}

	sorted := append([]SlotSpec(nil), l.Slots...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.slot().overlaps(cur.slot()) {
			return fmt.Errorf("slots %s and %s: %w", prev.Name, cur.Name, ErrOverlap)
		}
	}

	for _, r := range []Role{RoleFront, RoleBack, RoleDepth} {
		s, n := l.role(r)
		if n != 1 {
			return fmt.Errorf("%d %s slots, want 1: %w", n, r, ErrBadLayout)
		}
		if !s.Locked {
			return fmt.Errorf("%s slot %s must be locked: %w", r, s.Name, ErrBadLayout)
		}
		format := f.Format
		if r == RoleDepth {
			format = f.DepthFormat
		}
		need := Area{Width: f.Width, Height: f.Height, Format: format}.Pages()
		if need > s.Pages {
			return fmt.Errorf("%s area needs %d pages, slot %s has %d: %w", r, need, s.Name, s.Pages, ErrAreaTooLarge)
		}
	}
	return nil
}

// Build validates l and lays it out on a fresh allocator: every slot added
// and locked as listed, the frame and depth areas bound to their slots, and
// the draw and display sets selected.
func Build(l Layout, poolPages int) (*Allocator, error) {
	if err := l.Validate(poolPages); err != nil {
		return nil, err
	}
	a := New(poolPages)
	a.names = make(map[string]SlotHandle, len(l.Slots))
	roles := make(map[Role]SlotHandle, 3)
	for _, s := range l.Slots {
		h, err := a.AddSlot(s.Offset, s.Pages, s.Format)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", s.Name, err)
		}
		if s.Locked {
			if err := a.LockSlot(h); err != nil {
				return nil, err
			}
		}
		a.names[s.Name] = h
		if _, ok := roles[s.Role]; !ok {
			roles[s.Role] = h
		}
	}

	f := l.Frame
	front := a.CreateArea(f.Width, f.Height, f.Format)
	back := a.CreateArea(f.Width, f.Height, f.Format)
	depth := a.CreateArea(f.Width, f.Height, f.DepthFormat)
	for _, b := range []struct {
		area AreaHandle
		role Role
	}{{front, RoleFront}, {back, RoleBack}, {depth, RoleDepth}} {
		if err := a.BindAreaToSlot(b.area, roles[b.role]); err != nil {
			return nil, fmt.Errorf("%s area: %w", b.role, err)
		}
	}

	mode := NonInterlaced
	if f.Interlaced {
		mode = Interlaced
	}
	if err := a.SetDrawBuffers(mode, front, back, depth); err != nil {
		return nil, err
	}
	if err := a.SetDisplayBuffers(mode, front, back); err != nil {
		return nil, err
	}
	return a, nil
}

// SlotByName returns the slot a layout row named name became.
func (a *Allocator) SlotByName(name string) (SlotHandle, bool) {
	h, ok := a.names[name]
	return h, ok
}
