// Package config holds the simulator settings. The defaults reproduce the
// fixed timings of the simulation; a config file, VOICESIM_* environment
// variables and command-line flags can override them.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/voicesim/internal/command"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config contains the simulation settings.
type Config struct {
	// RunFor is how long the orchestrator lets the workers run.
	RunFor time.Duration

	// Listener timing: each utterance is heard after a uniform delay in
	// [MinDelay, MaxDelay].
	MinDelay time.Duration
	MaxDelay time.Duration

	// Processor timing.
	PollTimeout  time.Duration
	WorkDuration time.Duration

	// Heartbeat is the monitor interval.
	Heartbeat time.Duration

	// Commands is the catalog the listener draws from.
	Commands []string

	// Seed fixes the listener's random source. Zero seeds from the clock.
	Seed int64

	// TraceFile, when set, receives OpenTelemetry spans.
	TraceFile string
}

// Default returns the stock simulation settings.
func Default() Config {
	return Config{
		RunFor:       10 * time.Second,
		MinDelay:     500 * time.Millisecond,
		MaxDelay:     1500 * time.Millisecond,
		PollTimeout:  100 * time.Millisecond,
		WorkDuration: 500 * time.Millisecond,
		Heartbeat:    3 * time.Second,
		Commands:     command.DefaultCatalog().Strings(),
	}
}

// Catalog returns the configured commands.
func (c Config) Catalog() command.Catalog {
	return command.ParseCatalog(c.Commands)
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.RunFor < 0 {
		return fmt.Errorf("%w: run_for must not be negative, got %s", ErrInvalidConfig, c.RunFor)
	}
	if c.MinDelay < 0 {
		return fmt.Errorf("%w: min_delay must not be negative, got %s", ErrInvalidConfig, c.MinDelay)
	}
	if c.MaxDelay < c.MinDelay {
		return fmt.Errorf("%w: max_delay (%s) is below min_delay (%s)", ErrInvalidConfig, c.MaxDelay, c.MinDelay)
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("%w: poll_timeout must be positive, got %s", ErrInvalidConfig, c.PollTimeout)
	}
	if c.WorkDuration < 0 {
		return fmt.Errorf("%w: work must not be negative, got %s", ErrInvalidConfig, c.WorkDuration)
	}
	if c.Heartbeat <= 0 {
		return fmt.Errorf("%w: heartbeat must be positive, got %s", ErrInvalidConfig, c.Heartbeat)
	}
	if len(c.Catalog()) == 0 {
		return fmt.Errorf("%w: at least one command is required", ErrInvalidConfig)
	}
	return nil
}

// ExpandPaths resolves a leading ~ in file paths.
func (c *Config) ExpandPaths() error {
	if c.TraceFile == "" {
		return nil
	}
	p, err := homedir.Expand(c.TraceFile)
	if err != nil {
		return fmt.Errorf("unable to expand trace file path: %w", err)
	}
	c.TraceFile = p
	return nil
}

// yamlConfig is the on-disk shape, with durations spelled as strings.
type yamlConfig struct {
	RunFor       string   `yaml:"run_for"`
	MinDelay     string   `yaml:"min_delay"`
	MaxDelay     string   `yaml:"max_delay"`
	PollTimeout  string   `yaml:"poll_timeout"`
	WorkDuration string   `yaml:"work"`
	Heartbeat    string   `yaml:"heartbeat"`
	Commands     []string `yaml:"commands"`
	Seed         int64    `yaml:"seed,omitempty"`
	TraceFile    string   `yaml:"trace_file,omitempty"`
}

// YAML renders the configuration in config-file form.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(yamlConfig{
		RunFor:       c.RunFor.String(),
		MinDelay:     c.MinDelay.String(),
		MaxDelay:     c.MaxDelay.String(),
		PollTimeout:  c.PollTimeout.String(),
		WorkDuration: c.WorkDuration.String(),
		Heartbeat:    c.Heartbeat.String(),
		Commands:     c.Commands,
		Seed:         c.Seed,
		TraceFile:    c.TraceFile,
	})
}
