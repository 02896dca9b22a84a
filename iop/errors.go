package iop

import (
	"errors"
	"fmt"

	"emotion/firmware"
)

var (
	ErrHandshakeTimeout = errors.New("iop: co-processor handshake timed out")
	ErrModuleLoad       = errors.New("iop: module failed to load")
	ErrFacility         = errors.New("iop: facility init failed")
	ErrAlreadyUp        = errors.New("iop: bring-up already ran")
	ErrOutOfOrder       = firmware.ErrOutOfOrder
)

// Stage names a step of the bring-up.
type Stage int

const (
	StageValidate Stage = iota
	StageHandshake
	StagePatch
	StageLoad
	StageFileIO
	StageMemoryCard
	StageKeyboard
)

func (s Stage) String() string {
	switch s {
	case StageValidate:
		return "validate"
	case StageHandshake:
		return "handshake"
	case StagePatch:
		return "patch"
	case StageLoad:
		return "load"
	case StageFileIO:
		return "file-io"
	case StageMemoryCard:
		return "memory-card"
	case StageKeyboard:
		return "keyboard"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// StageError reports the step that stopped the bring-up. Module and Code
// are set when a module load or driver init returned a result.
type StageError struct {
	Stage  Stage
	Module string
	Code   int
	Err    error
}

func (e *StageError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("iop %s %s (code %d): %v", e.Stage, e.Module, e.Code, e.Err)
	}
	return fmt.Sprintf("iop %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
