// Package firmware describes the I/O processor modules the platform needs
// and the fixed order they must be loaded in.
package firmware

import (
	"errors"
	"fmt"
)

// ID identifies a firmware module.
type ID int

const (
	IOManX ID = iota
	FileXio
	SIO2Man
	MCMan
	MCServ
	USBD
	PS2Kbd
)

// Source says where the loader takes a module from.
type Source uint8

const (
	// SourceImage modules are executed from an image held in main memory.
	SourceImage Source = iota
	// SourceROM modules are loaded by path from the console ROM.
	SourceROM
)

func (s Source) String() string {
	switch s {
	case SourceImage:
		return "image"
	case SourceROM:
		return "rom"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Module describes one firmware module. Path is set for ROM modules only.
type Module struct {
	ID       ID
	Name     string
	Source   Source
	Path     string
	Requires []ID
}

var (
	ErrOutOfOrder    = errors.New("firmware: module scheduled before its prerequisite")
	ErrDuplicate     = errors.New("firmware: module scheduled twice")
	ErrMissingImage  = errors.New("firmware: module image not found")
	ErrEmptyPlan     = errors.New("firmware: empty load plan")
	ErrUnknownModule = errors.New("firmware: unknown module")
)

var modules = [...]Module{
	IOManX:  {ID: IOManX, Name: "iomanX", Source: SourceImage},
	FileXio: {ID: FileXio, Name: "fileXio", Source: SourceImage, Requires: []ID{IOManX}},
	SIO2Man: {ID: SIO2Man, Name: "SIO2MAN", Source: SourceROM, Path: "rom0:SIO2MAN"},
	MCMan:   {ID: MCMan, Name: "mcman", Source: SourceImage, Requires: []ID{IOManX, SIO2Man}},
	MCServ:  {ID: MCServ, Name: "mcserv", Source: SourceImage, Requires: []ID{MCMan}},
	USBD:    {ID: USBD, Name: "usbd", Source: SourceImage, Requires: []ID{IOManX}},
	PS2Kbd:  {ID: PS2Kbd, Name: "ps2kbd", Source: SourceImage, Requires: []ID{USBD}},
}

// Lookup returns the descriptor for id.
func Lookup(id ID) (Module, error) {
	if id < 0 || int(id) >= len(modules) {
		return Module{}, fmt.Errorf("module %d: %w", int(id), ErrUnknownModule)
	}
	return modules[id], nil
}

func (id ID) String() string {
	if m, err := Lookup(id); err == nil {
		return m.Name
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// Plan returns the bring-up order: file I/O first, then the memory card
// stack, then USB and the keyboard driver.
func Plan() []Module {
	order := []ID{IOManX, FileXio, SIO2Man, MCMan, MCServ, USBD, PS2Kbd}
	plan := make([]Module, len(order))
	for i, id := range order {
		plan[i] = modules[id]
	}
	return plan
}

// ValidateOrder checks that every module in plan comes after all of its
// prerequisites and appears once. Prerequisites come from the built-in
// table, not from the plan entries.
func ValidateOrder(plan []Module) error {
	if len(plan) == 0 {
		return ErrEmptyPlan
	}
	seen := make(map[ID]bool, len(plan))
	for i, m := range plan {
		known, err := Lookup(m.ID)
		if err != nil {
			return fmt.Errorf("%s at position %d: %w", m.Name, i, err)
		}
		if seen[m.ID] {
			return fmt.Errorf("%s at position %d: %w", m.Name, i, ErrDuplicate)
		}
		for _, req := range known.Requires {
			if !seen[req] {
				return fmt.Errorf("%s at position %d needs %s: %w", m.Name, i, req, ErrOutOfOrder)
			}
		}
		seen[m.ID] = true
	}
	return nil
}
