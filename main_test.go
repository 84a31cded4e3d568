package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/lipcue/internal/cache"
	"github.com/dgnsrekt/lipcue/internal/g2p"
	"github.com/dgnsrekt/lipcue/internal/rhubarb"
	"github.com/dgnsrekt/lipcue/internal/timing"
	"github.com/dgnsrekt/lipcue/internal/viseme"
)

func testOptions() options {
	return options{
		SoundFile: "hi.wav",
		Format:    timing.FormatSeconds,
		Model:     viseme.TimingEven,
		Workers:   2,
		G2P:       g2p.Config{Backend: g2p.BackendLetters},
	}
}

// setViper overrides a key for the duration of the test.
func setViper(t *testing.T, key string, value any) {
	t.Helper()
	old := viper.Get(key)
	viper.Set(key, value)
	t.Cleanup(func() { viper.Set(key, old) })
}

func TestSynthesize(t *testing.T) {
	words := []viseme.WordTiming{{Text: "hi", Start: 0, Duration: 0.4}}

	tl, doc, err := synthesize(context.Background(), testOptions(), words)
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if doc.Metadata.SoundFile != "hi.wav" {
		t.Errorf("soundFile = %q", doc.Metadata.SoundFile)
	}
	if len(tl.Cues) < 2 {
		t.Fatalf("got %d cues, want speech plus rest", len(tl.Cues))
	}
	last := tl.Cues[len(tl.Cues)-1]
	if last.Value != viseme.ShapeX || last.Start != 0.4 || last.End != 0.5 {
		t.Errorf("rest cue = %+v", last)
	}
	if doc.Metadata.Duration != 0.5 {
		t.Errorf("duration = %v, want 0.5", doc.Metadata.Duration)
	}
}

func TestSynthesizeWritesCache(t *testing.T) {
	dir := t.TempDir()
	o := testOptions()
	o.Cache = cacheOptions{Enabled: true, Config: *cache.DefaultConfig()}
	o.Cache.Config.Dir = dir

	words := []viseme.WordTiming{{Text: "hello", Start: 0, Duration: 0.5}}
	if _, _, err := synthesize(context.Background(), o, words); err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, cache.SnapshotName)); err != nil {
		t.Errorf("cache snapshot not written: %v", err)
	}

	m, err := openCache(o.Cache)
	if err != nil {
		t.Fatalf("openCache: %v", err)
	}
	defer m.Close()
	if !m.Contains(cache.Key(g2p.BackendLetters, "hello")) {
		t.Error("lookup for hello was not cached")
	}
}

func TestSynthesizeInvalidBackend(t *testing.T) {
	o := testOptions()
	o.G2P.Backend = "espeak"
	_, _, err := synthesize(context.Background(), o, nil)
	if !errors.Is(err, g2p.ErrInvalidBackend) {
		t.Errorf("err = %v, want ErrInvalidBackend", err)
	}
}

func TestWriteDocument(t *testing.T) {
	doc := rhubarb.FromTimeline(&viseme.Timeline{
		Cues:     []viseme.Cue{{Start: 0, End: 0.1, Value: viseme.ShapeX}},
		Duration: 0.1,
	}, "")

	var buf bytes.Buffer
	if err := writeDocument(&buf, "", doc, false); err != nil {
		t.Fatalf("writeDocument: %v", err)
	}
	if !strings.Contains(buf.String(), `"mouthCues":[{"start":0,"end":0.1,"value":"X"}]`) {
		t.Errorf("unexpected output %s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out", "cues.json")
	if err := writeDocument(&buf, path, doc, true); err != nil {
		t.Fatalf("writeDocument to file: %v", err)
	}
	got, err := rhubarb.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got.MouthCues) != 1 {
		t.Errorf("file holds %d cues", len(got.MouthCues))
	}
}

func TestValidateG2P(t *testing.T) {
	dict := filepath.Join(t.TempDir(), "words.dict")
	if err := os.WriteFile(dict, []byte("HI  HH AY1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  g2p.Config
		want error
	}{
		{"letters", g2p.Config{Backend: "letters"}, nil},
		{"dict", g2p.Config{Backend: "dict", DictPath: dict}, nil},
		{"dict fallback", g2p.Config{Backend: "letters", Fallback: "dict", DictPath: dict}, nil},
		{"unknown", g2p.Config{Backend: "leters"}, g2p.ErrInvalidBackend},
		{"unknown fallback", g2p.Config{Backend: "letters", Fallback: "x"}, g2p.ErrInvalidBackend},
		{"empty", g2p.Config{}, g2p.ErrInvalidConfig},
		{"dict without path", g2p.Config{Backend: "dict"}, g2p.ErrInvalidConfig},
		{"missing dict", g2p.Config{Backend: "dict", DictPath: dict + ".missing"}, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateG2P(tt.cfg)
			if tt.want == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadOptions(t *testing.T) {
	setViper(t, "g2p.backend", "letters")
	setViper(t, "synth.workers", 3)
	setViper(t, "timing.model", "weighted")
	setViper(t, "input.format", "ticks")
	setViper(t, "cache.memory_size", "1MiB")

	o, err := loadOptions()
	if err != nil {
		t.Fatalf("loadOptions: %v", err)
	}
	if o.Workers != 3 || o.Model != viseme.TimingWeighted || o.Format != timing.FormatTicks {
		t.Errorf("options = %+v", o)
	}
	if o.Cache.Config.MemoryCapacity != 1<<20 {
		t.Errorf("memory capacity = %d", o.Cache.Config.MemoryCapacity)
	}
}

func TestLoadOptionsRejectsBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"synth.workers", 0},
		{"timing.model", "random"},
		{"input.format", "frames"},
		{"cache.disk_size", "lots"},
		{"cache.compression_level", 40},
		{"cache.ttl_days", -1},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			setViper(t, "g2p.backend", "letters")
			setViper(t, tt.key, tt.value)
			if _, err := loadOptions(); err == nil {
				t.Errorf("%s=%v accepted", tt.key, tt.value)
			}
		})
	}
}

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "speech.json")
	if err := os.WriteFile(path, []byte("[]"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runs := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchFile(ctx, path, func() error {
			runs <- struct{}{}
			return nil
		})
	}()

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("initial run did not happen")
	}

	if err := os.WriteFile(path, []byte(`[{"text":"hi","start":0,"duration":0.4}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("change did not trigger a run")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchFile returned %v", err)
	}
}

func TestReadScript(t *testing.T) {
	t.Cleanup(func() { textFile, textMarkdown = "", false })

	got, err := readScript([]string{"hello", "there"})
	if err != nil || got != "hello there" {
		t.Errorf("readScript(args) = %q, %v", got, err)
	}
	if _, err := readScript(nil); err == nil {
		t.Error("expected an error without words")
	}

	dir := t.TempDir()
	md := filepath.Join(dir, "script.md")
	if err := os.WriteFile(md, []byte("# Hi\n\nSee [docs](http://x.y).\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	textFile = md
	if got, _ := readScript(nil); got != "Hi See docs." {
		t.Errorf("markdown script = %q", got)
	}
	if _, err := readScript([]string{"extra"}); err == nil {
		t.Error("expected an error for words plus --file")
	}

	txt := filepath.Join(dir, "script.txt")
	if err := os.WriteFile(txt, []byte("well -\nthen"), 0o600); err != nil {
		t.Fatal(err)
	}
	textFile = txt
	if got, _ := readScript(nil); got != "well then" {
		t.Errorf("text script = %q", got)
	}
}
