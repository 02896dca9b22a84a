// internal/config/validate.go
package config

import (
	"fmt"
	"time"
)

// Limits the hardware imposes on the configuration.
const (
	MaxScreenWidth  = 640
	MaxScreenHeight = 448
	MaxQueue        = 256
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	// ------------------------------------------------------------
	// SCREEN
	// ------------------------------------------------------------

	if cfg.Screen.Width <= 0 || cfg.Screen.Width > MaxScreenWidth {
		return fmt.Errorf("screen.width %d: must be in 1..%d", cfg.Screen.Width, MaxScreenWidth)
	}
	if cfg.Screen.Height <= 0 || cfg.Screen.Height > MaxScreenHeight {
		return fmt.Errorf("screen.height %d: must be in 1..%d", cfg.Screen.Height, MaxScreenHeight)
	}

	// ------------------------------------------------------------
	// IOP HANDSHAKE
	// ------------------------------------------------------------

	if cfg.IOP.HandshakeTimeout <= 0 {
		return fmt.Errorf("iop.handshake_timeout must be positive")
	}
	if cfg.IOP.PollInterval < 0 {
		return fmt.Errorf("iop.poll_interval must not be negative")
	}
	if cfg.IOP.PollInterval >= cfg.IOP.HandshakeTimeout {
		return fmt.Errorf(
			"iop.poll_interval %s must be shorter than handshake_timeout %s",
			cfg.IOP.PollInterval, cfg.IOP.HandshakeTimeout,
		)
	}
	if cfg.IOP.HandshakeTimeout > time.Minute {
		return fmt.Errorf("iop.handshake_timeout %s: longer than a minute", cfg.IOP.HandshakeTimeout)
	}

	// ------------------------------------------------------------
	// INPUT QUEUES
	// ------------------------------------------------------------

	if cfg.Input.KeyQueue <= 0 || cfg.Input.KeyQueue > MaxQueue {
		return fmt.Errorf("input.key_queue %d: must be in 1..%d", cfg.Input.KeyQueue, MaxQueue)
	}
	if cfg.Input.CharQueue <= 0 || cfg.Input.CharQueue > MaxQueue {
		return fmt.Errorf("input.char_queue %d: must be in 1..%d", cfg.Input.CharQueue, MaxQueue)
	}

	// ------------------------------------------------------------
	// HOST RUNNER
	// ------------------------------------------------------------

	if cfg.Host.Hz < 0 {
		return fmt.Errorf("host.hz must not be negative")
	}
	if cfg.Host.Scale < 0 || cfg.Host.Scale > 8 {
		return fmt.Errorf("host.scale %d: must be in 0..8", cfg.Host.Scale)
	}
	if cfg.Host.ResetLatency < 0 {
		return fmt.Errorf("host.reset_latency must not be negative")
	}

	switch cfg.Log.Level {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("log.level %q: unknown level", cfg.Log.Level)
	}
	return nil
}
