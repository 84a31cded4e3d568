package cache

import (
	"errors"
	"strings"
	"time"
)

// Common errors for cache operations
var (
	// ErrItemTooLarge is returned when an item exceeds the cache capacity
	ErrItemTooLarge = errors.New("item too large for cache")

	// ErrCacheCorrupted is returned when the disk snapshot cannot be read
	ErrCacheCorrupted = errors.New("cache data corrupted")

	// ErrClosed is returned when writing to a closed cache
	ErrClosed = errors.New("cache is closed")
)

// Level represents the cache tier
type Level int

const (
	// LevelMemory is the in-memory LRU cache
	LevelMemory Level = iota

	// LevelDisk is the persistent snapshot
	LevelDisk
)

// String returns the string representation of the cache level
func (l Level) String() string {
	switch l {
	case LevelMemory:
		return "L1-Memory"
	case LevelDisk:
		return "L2-Disk"
	default:
		return "Unknown"
	}
}

// Stats holds cache performance metrics
type Stats struct {
	Capacity  int64 // Maximum capacity in bytes
	Size      int64 // Current size in bytes
	ItemCount int64 // Number of entries

	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64 // hits / (hits + misses)

	LastAccess time.Time
	LastEvict  time.Time
}

func (s *Stats) updateHitRate() {
	if s.Hits+s.Misses > 0 {
		s.HitRate = float64(s.Hits) / float64(s.Hits+s.Misses)
	}
}

// Config holds configuration for a Manager
type Config struct {
	MemoryCapacity int64 // L1 bytes

	DiskCapacity     int64  // L2 bytes
	Dir              string // Directory holding the snapshot
	CompressionLevel int    // zstd level (1-22), 0 stores the snapshot uncompressed

	TTL             time.Duration // Entries older than this are dropped from disk
	CleanupInterval time.Duration // How often expired entries are removed, 0 disables
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() *Config {
	return &Config{
		MemoryCapacity:   8 * 1024 * 1024,
		DiskCapacity:     64 * 1024 * 1024,
		CompressionLevel: 3,
		TTL:              30 * 24 * time.Hour,
		CleanupInterval:  10 * time.Minute,
	}
}

// Cache is the contract shared by every cache level and the Manager.
type Cache interface {
	Get(key string) ([]byte, bool)
	Put(key string, value []byte) error
	Delete(key string) error
	Clear() error

	Size() int64
	Contains(key string) bool
	Stats() Stats
}

// Key builds the cache key for a word looked up through a backend. The
// backend keeps dictionaries and external tools from sharing answers.
func Key(backend, word string) string {
	return backend + "\x00" + strings.TrimSpace(word)
}
