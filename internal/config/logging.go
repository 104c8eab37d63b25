package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// LogConfig controls diagnostics. It is read from the environment only.
type LogConfig struct {
	Debug      bool   `env:"VOICESIM_DEBUG"`
	File       string `env:"VOICESIM_LOG_FILE"`
	MaxSizeMB  int    `env:"VOICESIM_LOG_MAX_SIZE"    envDefault:"10"`
	MaxBackups int    `env:"VOICESIM_LOG_MAX_BACKUPS" envDefault:"3"`
}

// LogConfigFromEnv parses the logging settings from the environment.
func LogConfigFromEnv() (LogConfig, error) {
	cfg, err := env.ParseAs[LogConfig]()
	if err != nil {
		return cfg, fmt.Errorf("error parsing log config: %w", err)
	}
	return cfg, nil
}
