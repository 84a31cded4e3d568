package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

// Manager coordinates the memory and disk levels: lookups fall through from
// L1 to L2, L2 hits are promoted, and a background routine expires old
// entries and flushes the snapshot.
type Manager struct {
	l1Memory *MemoryCache
	l2Disk   *DiskCache

	config *Config
	logger *log.Logger

	cleanupStop chan struct{}
	cleanupWg   sync.WaitGroup
	closeOnce   sync.Once

	mu     sync.Mutex
	closed bool
	stats  ManagerStats
}

// ManagerStats aggregates counters across both levels.
type ManagerStats struct {
	TotalHits   int64
	TotalMisses int64
	L1Hits      int64
	L2Hits      int64
	Promotions  int64
	CleanupRuns int64
	LastCleanup time.Time

	Memory Stats
	Disk   Stats
}

// HitRate returns hits / (hits + misses) across the hierarchy.
func (s ManagerStats) HitRate() float64 {
	if s.TotalHits+s.TotalMisses == 0 {
		return 0
	}
	return float64(s.TotalHits) / float64(s.TotalHits+s.TotalMisses)
}

// DefaultDir returns the per-user cache directory.
func DefaultDir() (string, error) {
	dir, err := gap.NewScope(gap.User, "lipcue").CacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return dir, nil
}

// NewManager creates a cache manager. A corrupted snapshot is logged and
// replaced rather than failing the run.
func NewManager(config *Config, logger *log.Logger) (*Manager, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = log.Default()
	}
	if config.Dir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		config.Dir = dir
	}

	l2Disk, err := NewDiskCache(config.Dir, config.DiskCapacity, config.CompressionLevel)
	if errors.Is(err, ErrCacheCorrupted) {
		logger.Warn("Discarding unreadable phoneme cache", "path", l2Disk.Path(), "err", err)
	} else if err != nil {
		return nil, fmt.Errorf("failed to create disk cache: %w", err)
	}

	m := &Manager{
		l1Memory:    NewMemoryCache(config.MemoryCapacity),
		l2Disk:      l2Disk,
		config:      config,
		logger:      logger,
		cleanupStop: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		m.startCleanupRoutine()
	}
	return m, nil
}

// Get looks a key up in L1, then L2.
func (m *Manager) Get(key string) ([]byte, bool) {
	if data, ok := m.l1Memory.Get(key); ok {
		m.mu.Lock()
		m.stats.L1Hits++
		m.stats.TotalHits++
		m.mu.Unlock()
		return data, true
	}

	if data, ok := m.l2Disk.Get(key); ok {
		m.mu.Lock()
		m.stats.L2Hits++
		m.stats.TotalHits++
		m.stats.Promotions++
		m.mu.Unlock()

		// Promotion is best effort.
		_ = m.l1Memory.Put(key, data)
		return data, true
	}

	m.mu.Lock()
	m.stats.TotalMisses++
	m.mu.Unlock()
	return nil, false
}

// Put stores a value in both levels.
func (m *Manager) Put(key string, value []byte) error {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := m.l1Memory.Put(key, value); err != nil && !errors.Is(err, ErrItemTooLarge) {
		return fmt.Errorf("failed to store in memory cache: %w", err)
	}
	if err := m.l2Disk.Put(key, value); err != nil {
		return fmt.Errorf("failed to store in disk cache: %w", err)
	}
	return nil
}

// Delete removes a key from both levels.
func (m *Manager) Delete(key string) error {
	if err := m.l1Memory.Delete(key); err != nil {
		return err
	}
	return m.l2Disk.Delete(key)
}

// Clear empties both levels and removes the snapshot.
func (m *Manager) Clear() error {
	if err := m.l1Memory.Clear(); err != nil {
		return fmt.Errorf("failed to clear memory cache: %w", err)
	}
	if err := m.l2Disk.Clear(); err != nil {
		return fmt.Errorf("failed to clear disk cache: %w", err)
	}
	return nil
}

// Size returns the combined size of both levels in bytes.
func (m *Manager) Size() int64 {
	return m.l1Memory.Size() + m.l2Disk.Size()
}

// Contains reports whether either level holds key.
func (m *Manager) Contains(key string) bool {
	return m.l1Memory.Contains(key) || m.l2Disk.Contains(key)
}

// Stats returns the hierarchy totals as a single Stats value.
func (m *Manager) Stats() Stats {
	s := m.Detailed()
	return Stats{
		Capacity:   m.config.MemoryCapacity + m.config.DiskCapacity,
		Size:       s.Memory.Size + s.Disk.Size,
		ItemCount:  s.Disk.ItemCount,
		Hits:       s.TotalHits,
		Misses:     s.TotalMisses,
		Evictions:  s.Memory.Evictions + s.Disk.Evictions,
		HitRate:    s.HitRate(),
		LastAccess: s.Disk.LastAccess,
		LastEvict:  s.Disk.LastEvict,
	}
}

// Detailed returns per-level statistics.
func (m *Manager) Detailed() ManagerStats {
	m.mu.Lock()
	stats := m.stats
	m.mu.Unlock()

	stats.Memory = m.l1Memory.Stats()
	stats.Disk = m.l2Disk.Stats()
	return stats
}

// Dir returns the directory holding the disk snapshot.
func (m *Manager) Dir() string {
	return m.config.Dir
}

// Flush persists the disk level.
func (m *Manager) Flush() error {
	return m.l2Disk.Flush()
}

// Close stops the cleanup routine and flushes the disk level.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		m.mu.Unlock()

		close(m.cleanupStop)
		m.cleanupWg.Wait()

		if err = m.l2Disk.Close(); err != nil {
			err = fmt.Errorf("failed to close disk cache: %w", err)
		}
	})
	return err
}

func (m *Manager) startCleanupRoutine() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	m.cleanupWg.Add(1)

	go func() {
		defer m.cleanupWg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.Cleanup()
			case <-m.cleanupStop:
				return
			}
		}
	}()
}

// Cleanup expires old entries and writes the snapshot.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	m.stats.CleanupRuns++
	m.stats.LastCleanup = time.Now()
	m.mu.Unlock()

	if m.config.TTL > 0 {
		if removed := m.l2Disk.RemoveOlderThan(time.Now().Add(-m.config.TTL)); removed > 0 {
			m.logger.Debug("Expired cached phonemes", "count", removed)
		}
		m.l1Memory.Prune(m.config.TTL)
	}

	if err := m.l2Disk.Flush(); err != nil {
		m.logger.Warn("Could not write phoneme cache", "err", err)
	}
}
