package g2p

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultMaxFailures is how many backend failures in a row make Fallback
// stop consulting the primary.
const DefaultMaxFailures = 3

// Fallback asks a primary adapter first and a secondary one when the
// primary fails or has no answer. A primary that keeps failing (as opposed
// to not knowing a word) is bypassed until Reset.
type Fallback struct {
	primary     Adapter
	secondary   Adapter
	maxFailures int
	logger      *log.Logger

	mu        sync.Mutex
	failures  int
	bypassing bool
}

// NewFallback chains primary and secondary.
func NewFallback(primary, secondary Adapter, maxFailures int, logger *log.Logger) *Fallback {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Fallback{
		primary:     primary,
		secondary:   secondary,
		maxFailures: maxFailures,
		logger:      logger,
	}
}

// Name implements Adapter.
func (f *Fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

// Phonemes implements Adapter.
func (f *Fallback) Phonemes(ctx context.Context, word string) ([]string, error) {
	if !f.usingSecondary() {
		phonemes, err := f.primary.Phonemes(ctx, word)
		if err == nil && len(phonemes) > 0 {
			f.recordSuccess()
			return phonemes, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil && !IsUnknownWord(err) {
			f.recordFailure(err)
		}
	}

	phonemes, err := f.secondary.Phonemes(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("both backends failed: %w", err)
	}
	return phonemes, nil
}

// Reset resumes consulting the primary.
func (f *Fallback) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures = 0
	f.bypassing = false
	f.logger.Debug("Reset to primary g2p backend", "backend", f.primary.Name())
}

// Status describes which backend is answering.
func (f *Fallback) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bypassing {
		return fmt.Sprintf("Using %s (%s failed %d times)", f.secondary.Name(), f.primary.Name(), f.failures)
	}
	return fmt.Sprintf("Using %s (failures: %d/%d)", f.primary.Name(), f.failures, f.maxFailures)
}

func (f *Fallback) usingSecondary() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bypassing
}

func (f *Fallback) recordSuccess() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failures > 0 {
		f.logger.Debug("Primary g2p backend recovered", "backend", f.primary.Name(), "failures", f.failures)
		f.failures = 0
	}
}

func (f *Fallback) recordFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failures++
	f.logger.Warn("Primary g2p backend failed",
		"backend", f.primary.Name(), "attempt", f.failures, "max", f.maxFailures, "err", err)

	var gerr *Error
	permanent := errors.As(err, &gerr) && !gerr.Recoverable()
	if !f.bypassing && (f.failures >= f.maxFailures || permanent) {
		f.logger.Warn("Switching to secondary g2p backend", "backend", f.secondary.Name())
		f.bypassing = true
	}
}
