// Package config loads the daemon-side tunables that sit above the wire
// protocol — connection limits, idle timeouts, the stream-pointer scheme,
// log verbosity — from a YAML configuration document via
// gopkg.in/yaml.v3. None of this is part of the wire contract; it
// configures the external daemon that embeds the engine.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds the tunables a daemon embedding the engine is
// expected to expose. Every field has a sane zero-value default so a
// config file only needs to mention what it overrides.
type EngineConfig struct {
	// Scheme is the stream-pointer URL scheme this deployment mints.
	Scheme string `yaml:"scheme"`

	// MaxConnections caps concurrently accepted connections; 0 means
	// unlimited.
	MaxConnections int `yaml:"maxConnections"`

	// IdleTimeout is parsed from the document, but nothing in this module
	// reads it: no idle timer closes connections. It is an invoker-layer
	// setting, not a protocol behavior.
	IdleTimeout time.Duration `yaml:"idleTimeout"`

	// LogLevel is one of "error", "info", "debug".
	LogLevel string `yaml:"logLevel"`

	// Strict enables Deframer.Strict: a malformed
	// complete frame closes the connection instead of being held.
	Strict bool `yaml:"strict"`
}

// Default returns the reference configuration: the default scheme, no
// connection cap, no idle timeout, info-level logging, lenient framing.
func Default() EngineConfig {
	return EngineConfig{
		Scheme:   "mascara",
		LogLevel: "info",
	}
}

// Load reads and parses an EngineConfig document from path, starting from
// Default() so a partial document only overrides what it specifies.
func Load(path string) (EngineConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
