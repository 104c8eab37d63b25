package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 10*time.Second, cfg.RunFor)
	assert.Equal(t, 500*time.Millisecond, cfg.MinDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.MaxDelay)
	assert.Equal(t, 100*time.Millisecond, cfg.PollTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.WorkDuration)
	assert.Equal(t, 3*time.Second, cfg.Heartbeat)
	assert.Equal(t, []string{"turn on the light", "move forward", "stop"}, cfg.Commands)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"zero run duration", func(c *Config) { c.RunFor = 0 }, true},
		{"negative run duration", func(c *Config) { c.RunFor = -time.Second }, false},
		{"negative min delay", func(c *Config) { c.MinDelay = -time.Millisecond }, false},
		{"max below min", func(c *Config) { c.MaxDelay = c.MinDelay - time.Millisecond }, false},
		{"equal delays", func(c *Config) { c.MaxDelay = c.MinDelay }, true},
		{"zero poll timeout", func(c *Config) { c.PollTimeout = 0 }, false},
		{"negative work", func(c *Config) { c.WorkDuration = -1 }, false},
		{"zero heartbeat", func(c *Config) { c.Heartbeat = 0 }, false},
		{"empty catalog", func(c *Config) { c.Commands = []string{"", ""} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestFromViper(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
run_for: 2s
heartbeat: 250ms
commands:
  - stop
  - jump
seed: 99
`)))

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.RunFor)
	assert.Equal(t, 250*time.Millisecond, cfg.Heartbeat)
	assert.Equal(t, []string{"stop", "jump"}, cfg.Commands)
	assert.Equal(t, int64(99), cfg.Seed)
	// Unset keys keep their defaults.
	assert.Equal(t, 100*time.Millisecond, cfg.PollTimeout)
}

func TestFromViper_CommandsFromEnv(t *testing.T) {
	t.Setenv("VOICESIM_COMMANDS", "turn on the light, stop ,,move forward")
	t.Setenv("VOICESIM_HEARTBEAT", "1s")

	v := viper.New()
	v.SetEnvPrefix("voicesim")
	v.AutomaticEnv()

	cfg, err := FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, []string{"turn on the light", "stop", "move forward"}, cfg.Commands)
	assert.Equal(t, time.Second, cfg.Heartbeat)
}

func TestFromViper_Invalid(t *testing.T) {
	v := viper.New()
	v.Set(KeyMinDelay, "2s")
	v.Set(KeyMaxDelay, "1s")

	_, err := FromViper(v)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestYAML(t *testing.T) {
	out, err := Default().YAML()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Equal(t, "10s", decoded["run_for"])
	assert.Equal(t, "1.5s", decoded["max_delay"])
	assert.NotContains(t, decoded, "trace_file")
}

func TestLogConfigFromEnv(t *testing.T) {
	t.Setenv("VOICESIM_DEBUG", "true")
	t.Setenv("VOICESIM_LOG_FILE", "/tmp/voicesim.log")

	cfg, err := LogConfigFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/tmp/voicesim.log", cfg.File)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 3, cfg.MaxBackups)
}
