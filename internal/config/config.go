// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Screen ScreenConfig `yaml:"screen"`
	IOP    IOPConfig    `yaml:"iop"`
	Input  InputConfig  `yaml:"input"`
	GS     GSConfig     `yaml:"gs"`
	Log    LogConfig    `yaml:"log"`
	Host   HostConfig   `yaml:"host"`
}

// ---- SCREEN ----

type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ---- IOP ----

type IOPConfig struct {
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	// IRXDir holds <name>.irx module images. Empty uses synthetic images
	// on the host simulator.
	IRXDir string `yaml:"irx_dir"`
}

// ---- INPUT ----

type InputConfig struct {
	KeyQueue  int `yaml:"key_queue"`
	CharQueue int `yaml:"char_queue"`
}

// ---- GS ----

type GSConfig struct {
	// Layout is an optional video memory layout file; empty uses the
	// built-in table.
	Layout string `yaml:"layout"`
}

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
}

// ---- HOST ----

type HostConfig struct {
	Headless       bool   `yaml:"headless"`
	Hz             int    `yaml:"hz"`
	Ticks          uint64 `yaml:"ticks"`
	Scale          int    `yaml:"scale"`
	MemoryCardPath string `yaml:"memory_card"`
	ResetLatency   int    `yaml:"reset_latency"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Screen: ScreenConfig{Width: 640, Height: 224},
		IOP: IOPConfig{
			HandshakeTimeout: 5 * time.Second,
			PollInterval:     time.Millisecond,
		},
		Input: InputConfig{KeyQueue: 16, CharQueue: 16},
		Log:   LogConfig{Level: "info"},
		Host:  HostConfig{Hz: 60, Scale: 2},
	}
}

// Load reads a YAML file over the defaults. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
