package main

import (
	"fmt"
	"os"

	"emotion/firmware"
	"emotion/gsmem"
	"emotion/internal/config"
	"emotion/iop"
	"emotion/platform"

	log "github.com/sirupsen/logrus"
)

// platformOptions turns the loaded configuration into controller options,
// reading the module images and layout file it names.
func platformOptions(cfg config.Config, l log.FieldLogger) (platform.Options, error) {
	opt := platform.Options{
		Width:  cfg.Screen.Width,
		Height: cfg.Screen.Height,
		Title:  "emotion",
		IOP: iop.Config{
			HandshakeTimeout: cfg.IOP.HandshakeTimeout,
			PollInterval:     cfg.IOP.PollInterval,
		},
		Log: l,
	}
	opt.Input.KeyQueue = cfg.Input.KeyQueue
	opt.Input.CharQueue = cfg.Input.CharQueue

	if cfg.IOP.IRXDir != "" {
		images, err := firmware.LoadImages(os.DirFS(cfg.IOP.IRXDir), firmware.Plan())
		if err != nil {
			return opt, fmt.Errorf("module images: %w", err)
		}
		opt.IOP.Images = images
	}
	if cfg.GS.Layout != "" {
		layout, err := gsmem.LoadLayout(cfg.GS.Layout)
		if err != nil {
			return opt, err
		}
		opt.Layout = &layout
	}
	return opt, nil
}
