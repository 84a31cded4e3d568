// Package cache keeps phoneme lookups around between runs. It combines an
// in-memory LRU cache (L1) with a zstd-compressed snapshot on disk (L2).
package cache
