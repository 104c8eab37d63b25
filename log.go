package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dgnsrekt/voicesim/internal/config"
)

// setupLog points the default logger at stderr, or at a rotating file when
// VOICESIM_LOG_FILE is set. The returned closer releases the file.
func setupLog() (func() error, error) {
	cfg, err := config.LogConfigFromEnv()
	if err != nil {
		return nil, err
	}

	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(true)
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if cfg.File == "" {
		return func() error { return nil }, nil
	}

	path, err := homedir.Expand(cfg.File)
	if err != nil {
		return nil, fmt.Errorf("unable to expand log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
	}
	log.SetOutput(w)
	log.SetFormatter(log.LogfmtFormatter)
	return w.Close, nil
}
