package g2p

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
)

// Backend names.
const (
	BackendDict    = "dict"
	BackendCommand = "command"
	BackendLetters = "letters"
)

// Backends lists every backend New accepts.
func Backends() []string {
	return []string{BackendDict, BackendCommand, BackendLetters}
}

// Config holds the settings backends are built from.
type Config struct {
	Backend  string // primary backend
	Fallback string // optional secondary backend

	DictPath string

	Command     string
	CommandArgs []string
	Timeout     time.Duration
	Rate        float64 // process spawns per second

	Logger *log.Logger
}

// New builds the named backend.
func New(name string, cfg Config) (Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BackendDict:
		if cfg.DictPath == "" {
			return nil, fmt.Errorf("%w: the dict backend needs a dictionary path", ErrInvalidConfig)
		}
		d, err := LoadDictionaryFile(cfg.DictPath)
		if err != nil {
			return nil, err
		}
		return d, nil
	case BackendCommand:
		c, err := NewCommand(cfg.Command, cfg.CommandArgs, cfg.Timeout, cfg.Rate)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendLetters:
		return NewLetters(), nil
	}

	err := fmt.Errorf("%w: %q", ErrInvalidBackend, name)
	if s := Suggest(name); len(s) > 0 {
		err = fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
	}
	return nil, err
}

// Build creates the primary backend and, when configured, chains the
// fallback behind it.
func Build(cfg Config) (Adapter, error) {
	primary, err := New(cfg.Backend, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Fallback == "" || strings.EqualFold(cfg.Fallback, cfg.Backend) {
		return primary, nil
	}

	secondary, err := New(cfg.Fallback, cfg)
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	return NewFallback(primary, secondary, DefaultMaxFailures, cfg.Logger), nil
}

// Suggest returns backend names resembling name, best match first.
func Suggest(name string) []string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}
	var out []string
	for _, m := range fuzzy.Find(name, Backends()) {
		out = append(out, m.Str)
	}
	return out
}
