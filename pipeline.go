package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/lipcue/internal/cache"
	"github.com/dgnsrekt/lipcue/internal/g2p"
	"github.com/dgnsrekt/lipcue/internal/rhubarb"
	"github.com/dgnsrekt/lipcue/internal/timing"
	"github.com/dgnsrekt/lipcue/internal/viseme"
	"github.com/dgnsrekt/lipcue/utils"
)

// options is the validated view of the configuration a run needs.
type options struct {
	SoundFile string
	Pretty    bool
	Format    timing.Format
	Model     viseme.TimingModel
	Workers   int
	G2P       g2p.Config
	Cache     cacheOptions
}

type cacheOptions struct {
	Enabled bool
	Config  cache.Config
}

func loadCacheOptions() (cacheOptions, error) {
	co := cacheOptions{Enabled: viper.GetBool("cache.enabled")}

	memory, err := humanize.ParseBytes(viper.GetString("cache.memory_size"))
	if err != nil {
		return co, fmt.Errorf("cache.memory_size: %w", err)
	}
	disk, err := humanize.ParseBytes(viper.GetString("cache.disk_size"))
	if err != nil {
		return co, fmt.Errorf("cache.disk_size: %w", err)
	}

	level := viper.GetInt("cache.compression_level")
	if level < 0 || level > 22 {
		return co, fmt.Errorf("cache.compression_level must be between 0 and 22, got %d", level)
	}
	ttlDays := viper.GetInt("cache.ttl_days")
	if ttlDays < 0 {
		return co, fmt.Errorf("cache.ttl_days must not be negative, got %d", ttlDays)
	}

	dir := viper.GetString("cache.dir")
	if dir != "" {
		dir = utils.ExpandPath(dir)
	}

	co.Config = cache.Config{
		MemoryCapacity:   int64(memory), //nolint:gosec
		DiskCapacity:     int64(disk),   //nolint:gosec
		Dir:              dir,
		CompressionLevel: level,
		TTL:              time.Duration(ttlDays) * 24 * time.Hour,
	}
	return co, nil
}

// openCache opens the phoneme cache. Expiry runs once per open instead of
// on a timer since runs are short.
func openCache(co cacheOptions) (*cache.Manager, error) {
	cfg := co.Config
	cfg.CleanupInterval = 0
	m, err := cache.NewManager(&cfg, log.Default())
	if err != nil {
		return nil, err
	}
	m.Cleanup()
	return m, nil
}

// newPhonemizer builds the configured backend chain, cached when enabled.
// The returned function releases the cache.
func newPhonemizer(o options) (g2p.Adapter, func() error, error) {
	cfg := o.G2P
	cfg.DictPath = utils.ExpandPath(cfg.DictPath)

	adapter, err := g2p.Build(cfg)
	if err != nil {
		return nil, nil, err
	}
	if !o.Cache.Enabled {
		return adapter, func() error { return nil }, nil
	}

	store, err := openCache(o.Cache)
	if err != nil {
		log.Warn("Phoneme cache unavailable", "err", err)
		return adapter, func() error { return nil }, nil
	}
	return g2p.NewCached(adapter, store, log.Default()), store.Close, nil
}

// synthesize turns word timings into a Rhubarb document.
func synthesize(ctx context.Context, o options, words []viseme.WordTiming) (*viseme.Timeline, rhubarb.Document, error) {
	adapter, release, err := newPhonemizer(o)
	if err != nil {
		return nil, rhubarb.Document{}, err
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("Could not save phoneme cache", "err", err)
		}
	}()

	dist, err := viseme.NewDistributor(o.Model)
	if err != nil {
		return nil, rhubarb.Document{}, err
	}

	synth := viseme.NewSynthesizer(adapter,
		viseme.WithDistributor(dist),
		viseme.WithWorkers(o.Workers),
		viseme.WithLogger(log.Default()),
	)
	tl, err := synth.Synthesize(ctx, words)
	if err != nil {
		return nil, rhubarb.Document{}, err
	}

	log.Debug("Synthesized mouth cues", "backend", adapter.Name(), "words", len(words), "cues", len(tl.Cues))
	return tl, rhubarb.FromTimeline(tl, o.SoundFile), nil
}

// render synthesizes words and delivers the document to every requested
// destination.
func render(ctx context.Context, o options, words []viseme.WordTiming) error {
	tl, doc, err := synthesize(ctx, o, words)
	if err != nil {
		return err
	}

	if err := writeDocument(os.Stdout, outputPath, doc, o.Pretty); err != nil {
		return err
	}

	if copyToClipboard {
		b, err := rhubarb.Marshal(doc, o.Pretty)
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(string(b)); err != nil {
			return fmt.Errorf("unable to copy to clipboard: %w", err)
		}
	}

	if term.IsTerminal(int(os.Stderr.Fd())) { //nolint:gosec
		printSummary(os.Stderr, tl, outputPath)
	}
	return nil
}

// writeDocument writes doc to path, or to w when path is empty.
func writeDocument(w io.Writer, path string, doc rhubarb.Document, pretty bool) error {
	if path == "" {
		if err := rhubarb.Encode(w, doc, pretty); err != nil {
			return fmt.Errorf("unable to write to writer: %w", err)
		}
		return nil
	}
	if err := rhubarb.WriteFile(utils.ExpandPath(path), doc, pretty); err != nil {
		return fmt.Errorf("unable to write %s: %w", path, err)
	}
	return nil
}
