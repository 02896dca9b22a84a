//go:build !ps2

package hal

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	ErrIOPNotReady        = errors.New("iop: rpc not bound or co-processor not synced")
	ErrPatchRequired      = errors.New("iop: loader patch required")
	ErrEmptyImage         = errors.New("iop: empty module image")
	ErrMissingDependency  = errors.New("iop: module dependency not resident")
	ErrAlreadyResident    = errors.New("iop: module already resident")
	ErrFacilityNotStarted = errors.New("iop: facility not initialized")
)

// Start codes returned by the simulated loader.
const (
	codeResident          = 0
	codeNotReady          = -100
	codeNoLMB             = -201
	codePrefixRejected    = -202
	codeMissingDependency = -203
	codeEmptyImage        = -204
	codeAlreadyResident   = -205
)

// hostModuleDeps lists what each module needs resident before it starts.
// It describes the hardware, not the bring-up plan: the plan is checked
// against it when it runs.
var hostModuleDeps = map[string][]string{
	"iomanX":  nil,
	"fileXio": {"iomanX"},
	"SIO2MAN": nil,
	"mcman":   {"iomanX", "SIO2MAN"},
	"mcserv":  {"mcman"},
	"usbd":    {"iomanX"},
	"ps2kbd":  {"usbd"},
}

type hostIOP struct {
	mu sync.Mutex

	latency int
	stuck   bool

	rpc       bool
	resetPoll int
	resetAck  bool
	syncPoll  int
	synced    bool
	loadFile  bool
	lmb       bool
	noPrefix  bool

	resident []string

	fileXio  bool
	rwBuffer int

	kbd *hostKeyboard
	mc  *hostMemoryCard
}

func newHostIOP(cfg HostConfig, kbd *hostKeyboard, mc *hostMemoryCard) *hostIOP {
	latency := cfg.ResetLatency
	if latency < 0 {
		latency = 0
	}
	return &hostIOP{latency: latency, stuck: cfg.Stuck, kbd: kbd, mc: mc}
}

func (p *hostIOP) InitRPC() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rpc = true
}

func (p *hostIOP) Reset() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.rpc || p.stuck {
		return false
	}
	if p.resetAck {
		return true
	}
	p.resetPoll++
	if p.resetPoll <= p.latency {
		return false
	}

	// A reset drops everything that was resident.
	p.resetAck = true
	p.synced = false
	p.syncPoll = 0
	p.loadFile = false
	p.lmb = false
	p.noPrefix = false
	p.resident = nil
	p.fileXio = false
	p.rwBuffer = 0
	p.kbd.setResident(false)
	return true
}

func (p *hostIOP) Sync() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.resetAck {
		return false
	}
	if p.synced {
		return true
	}
	p.syncPoll++
	if p.syncPoll <= p.latency {
		return false
	}
	p.synced = true
	return true
}

func (p *hostIOP) LoadFileInit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.synced {
		p.loadFile = true
	}
}

func (p *hostIOP) PatchEnableLMB() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loadFile {
		return ErrIOPNotReady
	}
	p.lmb = true
	return nil
}

func (p *hostIOP) PatchDisablePrefixCheck() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loadFile {
		return ErrIOPNotReady
	}
	p.noPrefix = true
	return nil
}

func (p *hostIOP) ExecModuleBuffer(name string, image []byte, args string) (int, error) {
	_ = args
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loadFile {
		return codeNotReady, ErrIOPNotReady
	}
	if !p.lmb {
		return codeNoLMB, fmt.Errorf("exec %s from buffer: %w", name, ErrPatchRequired)
	}
	if len(image) == 0 {
		return codeEmptyImage, fmt.Errorf("exec %s: %w", name, ErrEmptyImage)
	}
	return p.startLocked(name)
}

func (p *hostIOP) LoadModule(path string, args string) (int, error) {
	_ = args
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loadFile {
		return codeNotReady, ErrIOPNotReady
	}
	dev, name, ok := strings.Cut(path, ":")
	if !ok || name == "" {
		return codeEmptyImage, fmt.Errorf("load %q: %w", path, ErrEmptyImage)
	}
	// Old ROM modules carry no prefix the stock loader accepts.
	if dev == "rom0" && !p.noPrefix {
		return codePrefixRejected, fmt.Errorf("load %s: %w", path, ErrPatchRequired)
	}
	return p.startLocked(name)
}

func (p *hostIOP) startLocked(name string) (int, error) {
	for _, r := range p.resident {
		if r == name {
			return codeAlreadyResident, fmt.Errorf("start %s: %w", name, ErrAlreadyResident)
		}
	}
	for _, dep := range hostModuleDeps[name] {
		if !p.residentLocked(dep) {
			return codeMissingDependency, fmt.Errorf("start %s needs %s: %w", name, dep, ErrMissingDependency)
		}
	}
	p.resident = append(p.resident, name)
	if name == "ps2kbd" {
		p.kbd.setResident(true)
	}
	return codeResident, nil
}

func (p *hostIOP) residentLocked(name string) bool {
	for _, r := range p.resident {
		if r == name {
			return true
		}
	}
	return false
}

func (p *hostIOP) FileXioInit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.residentLocked("fileXio") {
		return fmt.Errorf("fileXio init: %w", ErrMissingDependency)
	}
	p.fileXio = true
	return nil
}

func (p *hostIOP) FileXioSetRWBufferSize(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.fileXio {
		return fmt.Errorf("fileXio buffer: %w", ErrFacilityNotStarted)
	}
	if n <= 0 {
		return fmt.Errorf("fileXio buffer size %d: invalid", n)
	}
	p.rwBuffer = n
	return nil
}

func (p *hostIOP) McInit(cardType int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.residentLocked("mcserv") {
		return fmt.Errorf("mc init: %w", ErrMissingDependency)
	}
	if cardType != CardTypeMC {
		return fmt.Errorf("mc init type %d: %w", cardType, ErrNotImplemented)
	}
	return p.mc.open()
}

func (p *hostIOP) loadedModules() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.resident...)
}
