package g2p

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/dgnsrekt/lipcue/internal/cache"
)

func TestCachedStoresSuccessfulLookups(t *testing.T) {
	inner := &fakeAdapter{name: "p", fn: answer("HH", "AY")}
	store := cache.NewMemoryCache(1024)
	c := NewCached(inner, store, quietLogger())

	for i := 0; i < 3; i++ {
		got, err := c.Phonemes(context.Background(), "Hi")
		if err != nil || !reflect.DeepEqual(got, []string{"HH", "AY"}) {
			t.Fatalf("Phonemes = %v, %v", got, err)
		}
	}
	if inner.calls.Load() != 1 {
		t.Errorf("inner adapter called %d times, want 1", inner.calls.Load())
	}

	if !store.Contains(cache.Key("p", "Hi")) {
		t.Error("expected entry under the word as given")
	}
}

func TestCachedKeepsWordVariantsApart(t *testing.T) {
	inner := &fakeAdapter{name: "command", fn: func(word string) ([]string, error) {
		switch word {
		case "Polish":
			return []string{"P", "OW1", "L", "IH0", "SH"}, nil
		default:
			return []string{"P", "AA1", "L", "IH0", "SH"}, nil
		}
	}}
	store := cache.NewMemoryCache(1024)
	c := NewCached(inner, store, quietLogger())

	for _, word := range []string{"Polish", "polish", "polish.", "Polish"} {
		if _, err := c.Phonemes(context.Background(), word); err != nil {
			t.Fatalf("Phonemes(%q): %v", word, err)
		}
	}
	if inner.calls.Load() != 3 {
		t.Errorf("inner adapter called %d times, want 3", inner.calls.Load())
	}

	got, _ := c.Phonemes(context.Background(), "polish")
	if got[1] != "AA1" {
		t.Errorf("polish = %v, want the lowercase answer", got)
	}
	got, _ = c.Phonemes(context.Background(), "Polish")
	if got[1] != "OW1" {
		t.Errorf("Polish = %v, want the capitalized answer", got)
	}
}

func TestCachedSkipsFailures(t *testing.T) {
	inner := &fakeAdapter{name: "p", fn: failWith(errors.New("boom"))}
	store := cache.NewMemoryCache(1024)
	c := NewCached(inner, store, quietLogger())

	for i := 0; i < 2; i++ {
		if _, err := c.Phonemes(context.Background(), "x"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls.Load() != 2 || store.Size() != 0 {
		t.Error("failed lookups must not be cached")
	}

	empty := NewCached(&fakeAdapter{name: "e", fn: answer()}, store, quietLogger())
	_, _ = empty.Phonemes(context.Background(), "123")
	if store.Size() != 0 {
		t.Error("empty answers must not be cached")
	}
}
