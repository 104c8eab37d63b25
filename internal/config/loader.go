package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Keys understood in the config file, as flags and as VOICESIM_* variables.
const (
	KeyRunFor      = "run_for"
	KeyMinDelay    = "min_delay"
	KeyMaxDelay    = "max_delay"
	KeyPollTimeout = "poll_timeout"
	KeyWork        = "work"
	KeyHeartbeat   = "heartbeat"
	KeyCommands    = "commands"
	KeySeed        = "seed"
	KeyTraceFile   = "trace_file"
)

// FromViper overlays whatever v has set onto the defaults and validates the
// result.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Default()

	durations := map[string]*time.Duration{
		KeyRunFor:      &cfg.RunFor,
		KeyMinDelay:    &cfg.MinDelay,
		KeyMaxDelay:    &cfg.MaxDelay,
		KeyPollTimeout: &cfg.PollTimeout,
		KeyWork:        &cfg.WorkDuration,
		KeyHeartbeat:   &cfg.Heartbeat,
	}
	for key, dst := range durations {
		if v.IsSet(key) {
			*dst = v.GetDuration(key)
		}
	}

	if v.IsSet(KeyCommands) {
		cfg.Commands = commandList(v)
	}
	if v.IsSet(KeySeed) {
		cfg.Seed = v.GetInt64(KeySeed)
	}
	if v.IsSet(KeyTraceFile) {
		cfg.TraceFile = v.GetString(KeyTraceFile)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid voicesim configuration: %w", err)
	}
	return cfg, nil
}

// commandList reads the catalog. A plain string, as VOICESIM_COMMANDS
// arrives, is a comma-separated list; commands themselves contain spaces.
func commandList(v *viper.Viper) []string {
	s, ok := v.Get(KeyCommands).(string)
	if !ok {
		return v.GetStringSlice(KeyCommands)
	}

	var commands []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			commands = append(commands, item)
		}
	}
	return commands
}
