//go:build ps2

package main

import (
	"context"
	"errors"
	"os"

	"emotion/app"
	"emotion/hal"
	"emotion/internal/buildinfo"
	"emotion/internal/config"
	"emotion/internal/diag"
	"emotion/platform"

	log "github.com/sirupsen/logrus"
)

const (
	ps2ConfigPath = "mc0:/EMOTION/config.yaml"
	ps2IRXDir     = "mc0:/EMOTION/IRX"
)

func main() {
	h := hal.New()
	logger := diag.New(diag.NewLineWriter(h.Logger()), log.InfoLevel)
	logger.Info(buildinfo.Banner())

	cfg, err := config.Load(ps2ConfigPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("%v; using defaults", err)
		}
		cfg = config.Default()
	}
	if lvl, err := diag.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	}
	if cfg.IOP.IRXDir == "" {
		cfg.IOP.IRXDir = ps2IRXDir
	}

	if err := run(h, cfg, logger); err != nil {
		logger.Error(err)
		// Nothing to return to; keep the last frame and the log visible.
		select {}
	}
}

func run(h hal.HAL, cfg config.Config, logger *log.Logger) error {
	opt, err := platformOptions(cfg, logger)
	if err != nil {
		return err
	}
	p := platform.New(h, opt)
	if err := p.Init(context.Background()); err != nil {
		return err
	}
	defer p.Close()

	console, err := app.NewConsole(p)
	if err != nil {
		return err
	}
	logger.AddHook(diag.NewConsoleHook(console, log.WarnLevel))
	step := app.Guard(p, console.Step)
	for {
		if err := step(); err != nil {
			if errors.Is(err, hal.ErrShutdown) {
				return nil
			}
			return err
		}
	}
}
