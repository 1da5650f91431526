// Package config holds vdbmend's configuration: defaults, an optional YAML
// config file, and the knobs the CLI flags override.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prober selection values.
const (
	ProberAuto   = "auto"
	ProberFile   = "file"
	ProberNative = "native"
)

// Config is the resolved tool configuration.
type Config struct {
	// VDBPath is the root of the package metadata database.
	VDBPath string `yaml:"vdb_path"`

	// Output is the staging root; empty means a fresh temporary directory.
	Output string `yaml:"output"`

	// Deep probes every obj entry instead of only soname-like and
	// bin-like paths.
	Deep bool `yaml:"deep"`

	// Prober selects the content-type probe: auto, file, or native.
	Prober string `yaml:"prober"`

	// IgnorePrefixes extends the built-in false-positive path prefixes.
	IgnorePrefixes []string `yaml:"ignore_prefixes"`

	Scanelf ScanelfConfig `yaml:"scanelf"`
}

// ScanelfConfig configures the linkage fact extractor.
type ScanelfConfig struct {
	// Command is the external wrapper script; empty selects the built-in
	// debug/elf extractor.
	Command   string `yaml:"command"`
	ChunkSize int    `yaml:"chunk_size"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		VDBPath: "/var/db/pkg",
		Prober:  ProberAuto,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults untouched.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Prober {
	case "", ProberAuto, ProberFile, ProberNative:
	default:
		return fmt.Errorf("unsupported prober %q (supported: auto, file, native)", c.Prober)
	}
	if c.Scanelf.ChunkSize < 0 {
		return fmt.Errorf("scanelf chunk_size must not be negative")
	}
	return nil
}
