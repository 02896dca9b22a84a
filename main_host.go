//go:build !ps2

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"emotion/app"
	"emotion/hal"
	"emotion/internal/buildinfo"
	"emotion/internal/config"
	"emotion/internal/diag"
	"emotion/platform"

	log "github.com/sirupsen/logrus"
)

func main() {
	var (
		cfgPath  string
		headless bool
		ticks    uint64
	)
	flag.StringVar(&cfgPath, "config", "", "YAML configuration file.")
	flag.BoolVar(&headless, "headless", false, "Run without a window, reading keys from the terminal.")
	flag.Uint64Var(&ticks, "ticks", 0, "Stop after N frames in headless mode (0 = run until exit).")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	if headless {
		cfg.Host.Headless = true
	}
	if ticks > 0 {
		cfg.Host.Ticks = ticks
	}

	lvl, err := diag.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	// Raw terminal mode needs explicit carriage returns.
	out := diag.NewLineWriter(crlf{os.Stderr})
	logger := diag.New(out, lvl)

	if err := run(cfg, logger); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *log.Logger) error {
	logger.Info(buildinfo.Banner())
	h := hal.NewHost(hal.HostConfig{
		MemoryCardPath: cfg.Host.MemoryCardPath,
		ResetLatency:   cfg.Host.ResetLatency,
	})
	opt, err := platformOptions(cfg, logger)
	if err != nil {
		return err
	}
	p := platform.New(h, opt)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		p.RequestClose()
	}()

	if err := p.Init(ctx); err != nil {
		return fmt.Errorf("platform init: %w", err)
	}
	defer func() {
		if err := p.Close(); err != nil && !errors.Is(err, platform.ErrNotReady) {
			logger.Warn(err)
		}
	}()

	console, err := app.NewConsole(p)
	if err != nil {
		return err
	}
	logger.AddHook(diag.NewConsoleHook(console, log.WarnLevel))
	step := app.Guard(p, console.Step)

	if !cfg.Host.Headless {
		return hal.RunWindow(h, step, hal.WindowConfig{Title: opt.Title, Scale: cfg.Host.Scale})
	}

	keys, err := hal.NewTerminalKeys(h)
	if err != nil {
		return err
	}
	if err := keys.Start(); err != nil {
		return err
	}
	defer keys.Stop()
	go func() {
		select {
		case <-keys.Interrupted():
			p.RequestClose()
		case <-ctx.Done():
		}
	}()

	return hal.RunHeadless(context.Background(), step, hal.HeadlessConfig{Hz: cfg.Host.Hz, Ticks: cfg.Host.Ticks})
}

// crlf writes each log line with a carriage return so it lines up while
// the terminal is raw.
type crlf struct{ f *os.File }

func (c crlf) WriteLineBytes(b []byte) {
	c.f.Write(b)
	c.f.Write([]byte{'\r', '\n'})
}
