package g2p

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
)

type fakeAdapter struct {
	name  string
	fn    func(word string) ([]string, error)
	calls atomic.Int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Phonemes(_ context.Context, word string) ([]string, error) {
	f.calls.Add(1)
	return f.fn(word)
}

func answer(phonemes ...string) func(string) ([]string, error) {
	return func(string) ([]string, error) { return phonemes, nil }
}

func failWith(err error) func(string) ([]string, error) {
	return func(string) ([]string, error) { return nil, err }
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := &fakeAdapter{name: "p", fn: answer("HH", "AY")}
	secondary := &fakeAdapter{name: "s", fn: answer("B")}
	f := NewFallback(primary, secondary, 3, quietLogger())

	got, err := f.Phonemes(context.Background(), "hi")
	if err != nil || !reflect.DeepEqual(got, []string{"HH", "AY"}) {
		t.Errorf("Phonemes = %v, %v", got, err)
	}
	if secondary.calls.Load() != 0 {
		t.Error("secondary consulted although primary answered")
	}
	if f.Name() != "p+s" {
		t.Errorf("Name = %q", f.Name())
	}
}

func TestFallbackOnUnknownWord(t *testing.T) {
	primary := &fakeAdapter{name: "p", fn: failWith(unknownWord("p", "x"))}
	secondary := &fakeAdapter{name: "s", fn: answer("K", "S")}
	f := NewFallback(primary, secondary, 1, quietLogger())

	for i := 0; i < 3; i++ {
		got, err := f.Phonemes(context.Background(), "x")
		if err != nil || !reflect.DeepEqual(got, []string{"K", "S"}) {
			t.Fatalf("Phonemes = %v, %v", got, err)
		}
	}
	// Unknown words are not backend failures.
	if primary.calls.Load() != 3 {
		t.Errorf("primary called %d times, want 3", primary.calls.Load())
	}
}

func TestFallbackOnEmptyAnswer(t *testing.T) {
	primary := &fakeAdapter{name: "p", fn: answer()}
	secondary := &fakeAdapter{name: "s", fn: answer("AA")}
	f := NewFallback(primary, secondary, 3, quietLogger())

	got, _ := f.Phonemes(context.Background(), "a")
	if !reflect.DeepEqual(got, []string{"AA"}) {
		t.Errorf("Phonemes = %v", got)
	}
}

func TestFallbackBypassesFailingPrimary(t *testing.T) {
	primary := &fakeAdapter{name: "p", fn: failWith(errors.New("boom"))}
	secondary := &fakeAdapter{name: "s", fn: answer("AA")}
	f := NewFallback(primary, secondary, 2, quietLogger())

	for i := 0; i < 5; i++ {
		if _, err := f.Phonemes(context.Background(), "a"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if primary.calls.Load() != 2 {
		t.Errorf("primary called %d times, want 2", primary.calls.Load())
	}
	if !strings.HasPrefix(f.Status(), "Using s") {
		t.Errorf("Status = %q", f.Status())
	}

	f.Reset()
	_, _ = f.Phonemes(context.Background(), "a")
	if primary.calls.Load() != 3 {
		t.Error("Reset did not resume the primary")
	}
}

func TestFallbackPermanentFailure(t *testing.T) {
	unavailable := &Error{Backend: "p", Code: CodeUnavailable, Err: ErrUnavailable}
	primary := &fakeAdapter{name: "p", fn: failWith(unavailable)}
	secondary := &fakeAdapter{name: "s", fn: answer("AA")}
	f := NewFallback(primary, secondary, 10, quietLogger())

	_, _ = f.Phonemes(context.Background(), "a")
	_, _ = f.Phonemes(context.Background(), "a")
	if primary.calls.Load() != 1 {
		t.Errorf("primary called %d times after a permanent failure", primary.calls.Load())
	}
}

func TestFallbackBothFail(t *testing.T) {
	primary := &fakeAdapter{name: "p", fn: failWith(errors.New("p down"))}
	secondary := &fakeAdapter{name: "s", fn: failWith(errors.New("s down"))}
	f := NewFallback(primary, secondary, 3, quietLogger())

	if _, err := f.Phonemes(context.Background(), "a"); err == nil {
		t.Error("expected an error when both backends fail")
	}
}
