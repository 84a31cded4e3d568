package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// logConfig is read from the environment only.
type logConfig struct {
	Debug  bool `env:"LIPCUE_DEBUG"`
	Stderr bool `env:"LIPCUE_LOG_STDERR"`
}

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, "lipcue").CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lipcue.log"), nil
}

func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[logConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log settings: %w", err)
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	if cfg.Stderr {
		log.SetOutput(os.Stderr)
		log.SetLevel(level)
		return func() error { return nil }, nil
	}

	log.SetOutput(io.Discard)

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil { //nolint:gosec
		return nil, err
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetLevel(level)
	return f.Close, nil
}
