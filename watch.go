package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/dgnsrekt/lipcue/utils"
)

// watchDebounce collapses the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// watchFile runs fn now and again after every change to path, until ctx is
// done. Errors from fn are reported without stopping the watch.
func watchFile(ctx context.Context, path string, fn func() error) error {
	abs, err := filepath.Abs(utils.ExpandPath(path))
	if err != nil {
		return fmt.Errorf("unable to get absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to watch %s: %w", path, err)
	}
	defer watcher.Close() //nolint:errcheck

	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("unable to watch %s: %w", path, err)
	}

	report := func() {
		if err := fn(); err != nil {
			log.Error("Could not regenerate mouth cues", "path", path, "err", err)
			fmt.Fprintln(os.Stderr, err)
		}
	}
	report()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Debug("Timings changed", "path", ev.Name, "op", ev.Op)
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watch error", "err", err)
		case <-timer.C:
			report()
		}
	}
}
