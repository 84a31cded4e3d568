package g2p

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/lipcue/internal/cache"
)

// Cached remembers successful lookups of another adapter.
type Cached struct {
	adapter Adapter
	store   cache.Cache
	logger  *log.Logger
}

// NewCached wraps adapter with store.
func NewCached(adapter Adapter, store cache.Cache, logger *log.Logger) *Cached {
	if logger == nil {
		logger = log.Default()
	}
	return &Cached{adapter: adapter, store: store, logger: logger}
}

// Name implements Adapter.
func (c *Cached) Name() string {
	return c.adapter.Name()
}

// Phonemes implements Adapter. Entries are keyed on the word exactly as the
// adapter receives it, since external tools may answer "Polish" and "polish"
// differently.
func (c *Cached) Phonemes(ctx context.Context, word string) ([]string, error) {
	key := cache.Key(c.adapter.Name(), word)
	if v, ok := c.store.Get(key); ok {
		return strings.Fields(string(v)), nil
	}

	phonemes, err := c.adapter.Phonemes(ctx, word)
	if err != nil || len(phonemes) == 0 {
		return phonemes, err
	}

	if err := c.store.Put(key, []byte(strings.Join(phonemes, " "))); err != nil {
		c.logger.Debug("Could not cache phonemes", "word", word, "err", err)
	}
	return phonemes, nil
}
