package viseme

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Phonemizer is the grapheme-to-phoneme capability the synthesizer consumes.
// Implementations return the raw phoneme symbols of a word in order; stress
// markers and separators are fine, the synthesizer cleans them.
type Phonemizer interface {
	Phonemes(ctx context.Context, word string) ([]string, error)
}

// PhonemizerFunc adapts a function to the Phonemizer interface.
type PhonemizerFunc func(ctx context.Context, word string) ([]string, error)

// Phonemes implements Phonemizer.
func (f PhonemizerFunc) Phonemes(ctx context.Context, word string) ([]string, error) {
	return f(ctx, word)
}

// Synthesizer builds mouth cue timelines from word timings. It holds no
// state between calls and is safe for concurrent use if its Phonemizer is.
type Synthesizer struct {
	phonemizer  Phonemizer
	distributor Distributor
	workers     int
	logger      *log.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithDistributor replaces the even timing distributor.
func WithDistributor(d Distributor) Option {
	return func(s *Synthesizer) {
		if d != nil {
			s.distributor = d
		}
	}
}

// WithWorkers sets how many words are phonemized concurrently. Values below
// one mean sequential lookups.
func WithWorkers(n int) Option {
	return func(s *Synthesizer) {
		s.workers = n
	}
}

// WithLogger sets the logger used to report fallbacks.
func WithLogger(l *log.Logger) Option {
	return func(s *Synthesizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSynthesizer creates a synthesizer around a phonemizer.
func NewSynthesizer(p Phonemizer, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		phonemizer:  p,
		distributor: EvenDistributor{},
		workers:     1,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// lookup is the phonemizer outcome for one word.
type lookup struct {
	phonemes []string
	err      error
}

// Synthesize converts word timings into a merged, rounded cue timeline that
// ends with a rest cue. Invalid timings yield a *ValidationError before any
// lookup happens; phonemizer failures never abort the run. A word that
// starts inside the previous cue is moved to its end. The only other error
// is the context's, when it ends during lookups.
func (s *Synthesizer) Synthesize(ctx context.Context, words []WordTiming) (*Timeline, error) {
	if err := ValidateWords(words); err != nil {
		return nil, err
	}

	results, err := s.lookupAll(ctx, words)
	if err != nil {
		return nil, err
	}

	tl := &Timeline{}
	var m Merger
	for i, w := range words {
		if !audible(w) {
			tl.Fallbacks = append(tl.Fallbacks, Fallback{Index: i, Text: w.Text, Reason: ReasonZeroDuration})
			s.logger.Debug("skipping zero-duration word", "index", i, "word", w.Text, "duration", w.Duration)
			continue
		}

		start := w.Start
		if last, ok := m.Last(); ok && Round3(start) < last.End {
			tl.Fallbacks = append(tl.Fallbacks, Fallback{Index: i, Text: w.Text, Reason: ReasonOverlap, Err: ErrOverlap})
			if Round3(w.End()) <= last.End {
				s.logger.Warn("skipping word hidden by the previous word", "index", i, "word", w.Text, "start", w.Start, "previous_end", last.End)
				continue
			}
			s.logger.Warn("word overlaps the previous word, moving its start", "index", i, "word", w.Text, "start", w.Start, "previous_end", last.End)
			start = last.End
		}
		end := w.End()

		res := results[i]
		var phonemes []string
		if res.err != nil {
			tl.Fallbacks = append(tl.Fallbacks, Fallback{Index: i, Text: w.Text, Reason: ReasonAdapterFailure, Err: res.err})
			s.logger.Warn("phoneme lookup failed, using default shape", "index", i, "word", w.Text, "err", res.err)
		} else {
			phonemes = Clean(res.phonemes)
			if len(phonemes) == 0 {
				tl.Fallbacks = append(tl.Fallbacks, Fallback{Index: i, Text: w.Text, Reason: ReasonNoPhonemes, Err: ErrNoPhonemes})
				s.logger.Debug("no usable phonemes, using default shape", "index", i, "word", w.Text, "raw", res.phonemes)
			}
		}

		if len(phonemes) == 0 {
			m.Add(start, end, DefaultShape)
			continue
		}

		intervals := s.distributor.Distribute(start, end-start, phonemes)
		for j, iv := range intervals {
			m.Add(iv.Start, iv.End, Resolve(phonemes[j]))
		}
	}

	if last, ok := m.Last(); ok {
		m.Add(last.End, last.End+RestDuration, ShapeX)
	}

	tl.Cues = m.Cues()
	if tl.Cues == nil {
		tl.Cues = []Cue{}
	}
	if n := len(tl.Cues); n > 0 {
		tl.Duration = tl.Cues[n-1].End
	}
	return tl, nil
}

// audible reports whether a word still lasts at least a millisecond once its
// edges are rounded.
func audible(w WordTiming) bool {
	return Round3(w.End()) > Round3(w.Start)
}

// lookupAll phonemizes every audible word. Results are
// indexed like words so the merge can run in input order afterwards.
func (s *Synthesizer) lookupAll(ctx context.Context, words []WordTiming) ([]lookup, error) {
	results := make([]lookup, len(words))
	if s.phonemizer == nil {
		for i := range results {
			results[i].err = fmt.Errorf("no phonemizer configured")
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, w := range words {
		if !audible(w) {
			continue
		}
		i, w := i, w
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			phonemes, err := s.phonemizer.Phonemes(gctx, w.Text)
			results[i] = lookup{phonemes: phonemes, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
