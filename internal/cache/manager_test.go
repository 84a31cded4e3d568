package cache

import (
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func newTestManager(t *testing.T, dir string) *Manager {
	t.Helper()
	config := DefaultConfig()
	config.Dir = dir
	config.CleanupInterval = 0
	m, err := NewManager(config, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestManager_BasicOperations(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	defer m.Close()

	key := Key("letters", "SHIP")
	if err := m.Put(key, []byte("SH IH P")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := m.Get(key)
	if !ok || string(got) != "SH IH P" {
		t.Errorf("Get = %q, %v", got, ok)
	}
	if !m.Contains(key) {
		t.Error("Contains returned false")
	}

	if err := m.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := m.Get(key); ok {
		t.Error("key still present after Delete")
	}
}

func TestManager_CacheHierarchy(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	defer m.Close()

	_ = m.Put("k", []byte("K"))
	m.Get("k")
	m.Get("missing")

	stats := m.Detailed()
	if stats.L1Hits != 1 || stats.L2Hits != 0 || stats.TotalMisses != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestManager_PromotionFromDisk(t *testing.T) {
	dir := t.TempDir()

	first := newTestManager(t, dir)
	_ = first.Put("word", []byte("W ER D"))
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := newTestManager(t, dir)
	defer second.Close()

	got, ok := second.Get("word")
	if !ok || string(got) != "W ER D" {
		t.Fatalf("Get = %q, %v; want value from disk", got, ok)
	}
	if !second.l1Memory.Contains("word") {
		t.Error("disk hit was not promoted to memory")
	}

	second.Get("word")
	stats := second.Detailed()
	if stats.L2Hits != 1 || stats.L1Hits != 1 || stats.Promotions != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestManager_Clear(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	defer m.Close()

	for i := 0; i < 10; i++ {
		_ = m.Put(fmt.Sprintf("w%d", i), []byte("AA"))
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if m.Size() != 0 {
		t.Errorf("Size = %d after Clear", m.Size())
	}
}

func TestManager_TTLCleanup(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	defer m.Close()
	m.config.TTL = 10 * time.Millisecond

	_ = m.Put("stale", []byte("S T EY L"))
	time.Sleep(20 * time.Millisecond)
	_ = m.Put("fresh", []byte("F R EH SH"))

	m.Cleanup()

	if m.Contains("stale") {
		t.Error("stale entry survived cleanup")
	}
	if !m.Contains("fresh") {
		t.Error("fresh entry removed by cleanup")
	}
	if runs := m.Detailed().CleanupRuns; runs != 1 {
		t.Errorf("CleanupRuns = %d, want 1", runs)
	}
}

func TestManager_CleanupRoutine(t *testing.T) {
	config := DefaultConfig()
	config.Dir = t.TempDir()
	config.CleanupInterval = 5 * time.Millisecond
	m, err := NewManager(config, log.New(io.Discard))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	time.Sleep(30 * time.Millisecond)
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if m.Detailed().CleanupRuns == 0 {
		t.Error("cleanup routine never ran")
	}
}

func TestManager_PutAfterClose(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	_ = m.Close()
	if err := m.Put("k", []byte("K")); err != ErrClosed {
		t.Errorf("Put after Close err = %v, want ErrClosed", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close err = %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := newTestManager(t, t.TempDir())
	defer m.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				key := Key("letters", fmt.Sprintf("W%d", i%7))
				_ = m.Put(key, []byte("W"))
				m.Get(key)
			}
		}(g)
	}
	wg.Wait()

	if got := m.Detailed().Disk.ItemCount; got != 7 {
		t.Errorf("disk holds %d entries, want 7", got)
	}
}

func TestKey(t *testing.T) {
	if Key("cmudict", "HI") == Key("letters", "HI") {
		t.Error("keys for different backends collide")
	}
	if Key("cmudict", " HI ") != Key("cmudict", "HI") {
		t.Error("keys should ignore surrounding space")
	}
}
