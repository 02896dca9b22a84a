// Package iop brings the I/O processor up: reset handshake, loader patches,
// then every firmware module of the plan in order with its post-load setup.
package iop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"emotion/firmware"
	"emotion/hal"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultHandshakeTimeout = 5 * time.Second
	DefaultPollInterval     = time.Millisecond
	DefaultRWBufferSize     = 128 * 1024
)

// Config tunes a Sequencer. Zero fields take the defaults.
type Config struct {
	HandshakeTimeout time.Duration
	PollInterval     time.Duration
	RWBufferSize     int
	CardType         int
	Plan             []firmware.Module
	Images           firmware.Images
	Log              log.FieldLogger
}

func (c *Config) setDefaults() {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.PollInterval < 0 {
		c.PollInterval = 0
	}
	if c.RWBufferSize <= 0 {
		c.RWBufferSize = DefaultRWBufferSize
	}
	if c.CardType == 0 {
		c.CardType = hal.CardTypeMC
	}
	if c.Plan == nil {
		c.Plan = firmware.Plan()
	}
	if c.Images == nil {
		c.Images = firmware.SyntheticImages(c.Plan)
	}
	if c.Log == nil {
		l := log.New()
		l.SetOutput(io.Discard)
		c.Log = l
	}
}

// Status is the outcome of a successful bring-up.
type Status struct {
	// Code is the last return code, the keyboard driver init result.
	Code    int
	Loaded  []string
	Elapsed time.Duration
}

// Sequencer runs the bring-up once.
type Sequencer struct {
	iop hal.IOP
	kbd hal.KeyboardDriver
	cfg Config

	loaded []string
	ran    bool
	code   int
}

// New returns a sequencer driving iop and, once its module is resident, kbd.
func New(iop hal.IOP, kbd hal.KeyboardDriver, cfg Config) *Sequencer {
	cfg.setDefaults()
	return &Sequencer{iop: iop, kbd: kbd, cfg: cfg}
}

// Loaded returns the modules loaded so far, in load order.
func (s *Sequencer) Loaded() []string {
	return append([]string(nil), s.loaded...)
}

// BringUp validates the plan, then performs the handshake, patches and
// module loads. It stops at the first failing step with a *StageError.
func (s *Sequencer) BringUp(ctx context.Context) (Status, error) {
	if s.ran {
		return Status{}, ErrAlreadyUp
	}
	s.ran = true
	start := time.Now()

	if err := s.validate(); err != nil {
		return Status{}, err
	}
	if err := s.handshake(ctx); err != nil {
		return Status{}, err
	}
	s.cfg.Log.Debugf("IOP: reset and synced in %s", time.Since(start).Round(time.Microsecond))

	s.iop.LoadFileInit()
	if err := s.iop.PatchEnableLMB(); err != nil {
		return Status{}, &StageError{Stage: StagePatch, Module: "lmb", Err: err}
	}
	if err := s.iop.PatchDisablePrefixCheck(); err != nil {
		return Status{}, &StageError{Stage: StagePatch, Module: "prefix", Err: err}
	}

	for _, m := range s.cfg.Plan {
		if err := ctx.Err(); err != nil {
			return Status{}, &StageError{Stage: StageLoad, Module: m.Name, Err: err}
		}
		if err := s.load(m); err != nil {
			return Status{}, err
		}
		if err := s.afterLoad(m); err != nil {
			return Status{}, err
		}
	}

	st := Status{Code: s.code, Loaded: s.Loaded(), Elapsed: time.Since(start)}
	s.cfg.Log.Infof("IOP: %d modules loaded in %s", len(st.Loaded), st.Elapsed.Round(time.Millisecond))
	return st, nil
}

func (s *Sequencer) validate() error {
	if err := firmware.ValidateOrder(s.cfg.Plan); err != nil {
		return &StageError{Stage: StageValidate, Err: err}
	}
	for _, m := range s.cfg.Plan {
		if m.Source != firmware.SourceImage {
			continue
		}
		if _, err := s.cfg.Images.Lookup(m); err != nil {
			return &StageError{Stage: StageValidate, Module: m.Name, Err: err}
		}
	}
	return nil
}

// handshake resets the co-processor and waits, bounded, for both the reset
// and the sync acknowledgement.
func (s *Sequencer) handshake(ctx context.Context) error {
	s.iop.InitRPC()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
	defer cancel()

	var tick <-chan time.Time
	if s.cfg.PollInterval > 0 {
		t := time.NewTicker(s.cfg.PollInterval)
		defer t.Stop()
		tick = t.C
	}

	wait := func(what string, ready func() bool) error {
		for !ready() {
			if tick == nil {
				if err := ctx.Err(); err != nil {
					return s.handshakeErr(what, err)
				}
				continue
			}
			select {
			case <-ctx.Done():
				return s.handshakeErr(what, ctx.Err())
			case <-tick:
			}
		}
		return nil
	}
	if err := wait("reset", s.iop.Reset); err != nil {
		return err
	}
	return wait("sync", s.iop.Sync)
}

func (s *Sequencer) handshakeErr(what string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%s after %s: %w", what, s.cfg.HandshakeTimeout, ErrHandshakeTimeout)
	}
	return &StageError{Stage: StageHandshake, Module: what, Code: -1, Err: err}
}

func (s *Sequencer) load(m firmware.Module) error {
	var (
		code int
		err  error
	)
	switch m.Source {
	case firmware.SourceROM:
		code, err = s.iop.LoadModule(m.Path, "")
	default:
		img, lerr := s.cfg.Images.Lookup(m)
		if lerr != nil {
			return &StageError{Stage: StageLoad, Module: m.Name, Code: -1, Err: lerr}
		}
		code, err = s.iop.ExecModuleBuffer(m.Name, img.Data, "")
	}
	if err != nil {
		return &StageError{Stage: StageLoad, Module: m.Name, Code: code, Err: fmt.Errorf("%w: %w", ErrModuleLoad, err)}
	}
	if code < 0 {
		return &StageError{Stage: StageLoad, Module: m.Name, Code: code, Err: ErrModuleLoad}
	}
	s.loaded = append(s.loaded, m.Name)
	s.code = code
	s.cfg.Log.Infof("IOP: loaded %s (code %d)", m.Name, code)
	return nil
}

// afterLoad runs the setup a module enables once it is resident.
func (s *Sequencer) afterLoad(m firmware.Module) error {
	switch m.ID {
	case firmware.MCServ:
		if err := s.iop.FileXioInit(); err != nil {
			return &StageError{Stage: StageFileIO, Module: "fileXio", Err: fmt.Errorf("%w: %w", ErrFacility, err)}
		}
		if err := s.iop.FileXioSetRWBufferSize(s.cfg.RWBufferSize); err != nil {
			return &StageError{Stage: StageFileIO, Module: "fileXio", Err: fmt.Errorf("%w: %w", ErrFacility, err)}
		}
		s.cfg.Log.Debugf("IOP: fileXio ready, rw buffer %d KiB", s.cfg.RWBufferSize/1024)
		if err := s.iop.McInit(s.cfg.CardType); err != nil {
			return &StageError{Stage: StageMemoryCard, Module: "mc", Err: fmt.Errorf("%w: %w", ErrFacility, err)}
		}
		s.cfg.Log.Debugf("IOP: memory card facility ready (type %d)", s.cfg.CardType)
	case firmware.PS2Kbd:
		if s.kbd == nil {
			return &StageError{Stage: StageKeyboard, Module: m.Name, Err: fmt.Errorf("%w: no keyboard driver", ErrFacility)}
		}
		code, err := s.kbd.Init()
		s.code = code
		if err != nil {
			return &StageError{Stage: StageKeyboard, Module: m.Name, Code: code, Err: fmt.Errorf("%w: %w", ErrFacility, err)}
		}
		s.cfg.Log.Infof("IOP: keyboard driver initialized (code %d)", code)
	}
	return nil
}
