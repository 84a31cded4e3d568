package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// SnapshotName is the file the disk cache persists to inside its directory.
const SnapshotName = "phonemes.gob.zst"

// DiskCache is the L2 cache. Phoneme strings are tiny, so instead of one
// file per entry the whole table lives in memory and is written to a single
// zstd-compressed gob snapshot by Flush.
type DiskCache struct {
	path     string
	capacity int64 // Maximum size in bytes
	size     int64 // Current size in bytes

	compressionLevel int

	entries map[string]*diskEntry
	dirty   bool

	mu sync.RWMutex

	stats Stats
}

// diskEntry is one persisted record
type diskEntry struct {
	Key        string
	Value      []byte
	Timestamp  time.Time
	LastAccess time.Time
	Hits       int64
}

func (e *diskEntry) size() int64 {
	return int64(len(e.Key) + len(e.Value))
}

// NewDiskCache opens (or creates) the snapshot in dir. A corrupted snapshot
// is reported as ErrCacheCorrupted and the cache starts empty.
func NewDiskCache(dir string, capacity int64, compressionLevel int) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dc := &DiskCache{
		path:             filepath.Join(dir, SnapshotName),
		capacity:         capacity,
		compressionLevel: compressionLevel,
		entries:          make(map[string]*diskEntry),
		stats:            Stats{Capacity: capacity},
	}

	if err := dc.load(); err != nil {
		return dc, err
	}
	return dc, nil
}

// Path returns the snapshot location.
func (dc *DiskCache) Path() string {
	return dc.path
}

// Get retrieves a value from the cache.
func (dc *DiskCache) Get(key string) ([]byte, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	entry, ok := dc.entries[key]
	if !ok {
		dc.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.Hits++
	dc.stats.Hits++
	dc.stats.LastAccess = entry.LastAccess
	return entry.Value, true
}

// Put stores a value, evicting least recently accessed entries when full.
func (dc *DiskCache) Put(key string, value []byte) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	now := time.Now()
	entry := &diskEntry{Key: key, Value: value, Timestamp: now, LastAccess: now}
	if entry.size() > dc.capacity {
		return ErrItemTooLarge
	}

	if old, ok := dc.entries[key]; ok {
		dc.size -= old.size()
		delete(dc.entries, key)
	}
	for dc.size+entry.size() > dc.capacity && len(dc.entries) > 0 {
		dc.evictOldest()
	}

	dc.entries[key] = entry
	dc.size += entry.size()
	dc.dirty = true
	return nil
}

// Delete removes an entry.
func (dc *DiskCache) Delete(key string) error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if entry, ok := dc.entries[key]; ok {
		dc.size -= entry.size()
		delete(dc.entries, key)
		dc.dirty = true
	}
	return nil
}

// Clear drops every entry and removes the snapshot file.
func (dc *DiskCache) Clear() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.entries = make(map[string]*diskEntry)
	dc.size = 0
	dc.dirty = false
	if err := os.Remove(dc.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache snapshot: %w", err)
	}
	return nil
}

// Size returns the current cache size in bytes.
func (dc *DiskCache) Size() int64 {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	return dc.size
}

// Contains checks for a key without updating access times.
func (dc *DiskCache) Contains(key string) bool {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	_, ok := dc.entries[key]
	return ok
}

// Stats returns cache statistics.
func (dc *DiskCache) Stats() Stats {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	stats := dc.stats
	stats.Size = dc.size
	stats.ItemCount = int64(len(dc.entries))
	stats.updateHitRate()
	return stats
}

// RemoveOlderThan drops entries stored before cutoff.
func (dc *DiskCache) RemoveOlderThan(cutoff time.Time) int {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	removed := 0
	for key, entry := range dc.entries {
		if entry.Timestamp.Before(cutoff) {
			dc.size -= entry.size()
			delete(dc.entries, key)
			removed++
		}
	}
	if removed > 0 {
		dc.dirty = true
	}
	return removed
}

// Flush writes the snapshot if anything changed since the last flush.
func (dc *DiskCache) Flush() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if !dc.dirty {
		return nil
	}
	if err := dc.save(); err != nil {
		return err
	}
	dc.dirty = false
	return nil
}

// Close flushes the snapshot.
func (dc *DiskCache) Close() error {
	return dc.Flush()
}

// evictOldest removes the least recently accessed entry (must be called with lock held).
func (dc *DiskCache) evictOldest() {
	var oldest *diskEntry
	for _, entry := range dc.entries {
		if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
			oldest = entry
		}
	}
	if oldest == nil {
		return
	}
	dc.size -= oldest.size()
	delete(dc.entries, oldest.Key)
	dc.stats.Evictions++
	dc.stats.LastEvict = time.Now()
}

func (dc *DiskCache) load() error {
	f, err := os.Open(dc.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache snapshot: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if dc.compressionLevel > 0 {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
		}
		defer dec.Close()
		r = dec
	}

	var entries []*diskEntry
	if err := gob.NewDecoder(r).Decode(&entries); err != nil {
		return fmt.Errorf("%w: %v", ErrCacheCorrupted, err)
	}

	for _, entry := range entries {
		dc.entries[entry.Key] = entry
		dc.size += entry.size()
	}
	return nil
}

// save writes the snapshot atomically (must be called with lock held).
func (dc *DiskCache) save() error {
	entries := make([]*diskEntry, 0, len(dc.entries))
	for _, entry := range dc.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	var buf bytes.Buffer
	var w io.Writer = &buf
	var enc *zstd.Encoder
	if dc.compressionLevel > 0 {
		var err error
		enc, err = zstd.NewWriter(&buf,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(dc.compressionLevel)))
		if err != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		w = enc
	}
	if err := gob.NewEncoder(w).Encode(entries); err != nil {
		return fmt.Errorf("failed to encode cache snapshot: %w", err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to compress cache snapshot: %w", err)
		}
	}

	tmp := dc.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write cache snapshot: %w", err)
	}
	if err := os.Rename(tmp, dc.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace cache snapshot: %w", err)
	}
	return nil
}
