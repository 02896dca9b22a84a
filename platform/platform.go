// Package platform owns the console bring-up and the per-frame loop the
// framework drives: Init once, then PollInput and SwapBuffers every frame
// until ShouldClose.
package platform

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"emotion/gsmem"
	"emotion/hal"
	"emotion/input"
	"emotion/iop"

	log "github.com/sirupsen/logrus"
)

// State is the controller lifecycle.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

var (
	ErrAlreadyInitialized = errors.New("platform: already initialized")
	ErrNotReady           = errors.New("platform: not ready")
)

const (
	DefaultImmVertices     = 64 * 1024
	DefaultImmDisplayLists = 1000
)

// Options configures a Platform. Zero fields take defaults.
type Options struct {
	Width  int
	Height int
	Title  string

	Crt             hal.CrtMode
	ImmVertices     int
	ImmDisplayLists int

	// Layout replaces the built-in video memory table when set.
	Layout *gsmem.Layout

	IOP   iop.Config
	Input input.Options

	// WorkDir is the storage base path. Empty uses the working directory.
	WorkDir string

	Log log.FieldLogger
}

func (o *Options) setDefaults() {
	if o.Width <= 0 {
		o.Width = 640
	}
	if o.Height <= 0 {
		o.Height = 224
	}
	if o.Crt == (hal.CrtMode{}) {
		o.Crt = hal.CrtMode{Interlace: true, Video: hal.VideoNTSC, Field: hal.FieldFrame}
	}
	if o.ImmVertices <= 0 {
		o.ImmVertices = DefaultImmVertices
	}
	if o.ImmDisplayLists <= 0 {
		o.ImmDisplayLists = DefaultImmDisplayLists
	}
	if o.Log == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		o.Log = l
	}
	if o.IOP.Log == nil {
		o.IOP.Log = o.Log
	}
	if o.Input.Log == nil {
		o.Input.Log = o.Log
	}
}

// Platform is the lifecycle controller. Init, PollInput, SwapBuffers and
// Close belong to one goroutine; RequestClose and ShouldClose may be called
// from any.
type Platform struct {
	hal hal.HAL
	opt Options
	log log.FieldLogger

	state    atomic.Int32
	shutdown atomic.Bool

	core     Core
	seq      *iop.Sequencer
	status   iop.Status
	vram     *gsmem.Allocator
	input    *input.Pipeline
	renderer hal.RendererInfo
}

// New returns an uninitialized controller over h.
func New(h hal.HAL, opt Options) *Platform {
	opt.setDefaults()
	p := &Platform{
		hal:   h,
		opt:   opt,
		log:   opt.Log,
		seq:   iop.New(h.IOP(), h.Keyboard(), opt.IOP),
		input: input.New(h.Keyboard(), opt.Input),
	}
	p.core.Window.Screen = Size{opt.Width, opt.Height}
	p.core.Window.Title = opt.Title
	return p
}

// State returns the lifecycle state.
func (p *Platform) State() State { return State(p.state.Load()) }

func (p *Platform) setState(s State) { p.state.Store(int32(s)) }

// Core returns the window, storage and timer record.
func (p *Platform) Core() *Core { return &p.core }

// Input returns the keyboard pipeline.
func (p *Platform) Input() *input.Pipeline { return p.input }

// VRAM returns the video memory layout, nil before Init.
func (p *Platform) VRAM() *gsmem.Allocator { return p.vram }

// Firmware returns the bring-up result.
func (p *Platform) Firmware() iop.Status { return p.status }

// Modules returns the firmware modules loaded so far.
func (p *Platform) Modules() []string { return p.seq.Loaded() }

// Renderer returns the strings the renderer reported at Init.
func (p *Platform) Renderer() hal.RendererInfo { return p.renderer }

// MemoryCard returns the card opened during bring-up.
func (p *Platform) MemoryCard() hal.MemoryCard { return p.hal.MemoryCard() }

// Log returns the diagnostic sink.
func (p *Platform) Log() log.FieldLogger { return p.log }

// Time returns seconds elapsed since Init started the timer.
func (p *Platform) Time() float64 {
	now := p.hal.Clock().Nanotime()
	return float64(now-p.core.Time.Base) * 1e-9
}

// ShouldClose reports true whenever the controller is not ready or a close
// was requested.
func (p *Platform) ShouldClose() bool {
	return p.State() != StateReady || p.shutdown.Load()
}

// RequestClose is the external exit signal.
func (p *Platform) RequestClose() {
	p.shutdown.Store(true)
}
