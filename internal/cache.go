package internal

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const cacheFileName = "clean.mp"

type cacheEntry struct {
	Hash      string    `msgpack:"hash"`
	CheckedAt time.Time `msgpack:"checked_at"`
}

type cacheFile struct {
	Fingerprint string                `msgpack:"fingerprint"`
	Entries     map[string]cacheEntry `msgpack:"entries"`
}

// Cache remembers files that the current catalog leaves unchanged, keyed by
// path and content hash. Entries written under a different catalog are
// discarded on load.
type Cache struct {
	CacheDir    string
	fingerprint string
	entries     map[string]cacheEntry
	mutex       sync.RWMutex
	maxAge      time.Duration
	dirty       bool
}

// NewCache opens (or creates) the cache stored in cacheDir for a catalog
// with the given fingerprint.
func NewCache(cacheDir, fingerprint string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir:    cacheDir,
		fingerprint: fingerprint,
		entries:     make(map[string]cacheEntry),
	}

	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}

	return cache, nil
}

func (c *Cache) load() error {
	f, err := os.Open(filepath.Join(c.CacheDir, cacheFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var stored cacheFile
	if err := msgpack.NewDecoder(f).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode cache file: %w", err)
	}
	if stored.Fingerprint != c.fingerprint {
		c.dirty = true
		return nil
	}
	if stored.Entries != nil {
		c.entries = stored.Entries
	}
	return nil
}

// Save writes the cache to disk if it changed since it was loaded.
func (c *Cache) Save() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.dirty {
		return nil
	}

	tmp, err := os.CreateTemp(c.CacheDir, "tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	stored := cacheFile{Fingerprint: c.fingerprint, Entries: c.entries}
	if err := msgpack.NewEncoder(tmp).Encode(&stored); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to encode cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(c.CacheDir, cacheFileName)); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	c.dirty = false
	return nil
}

// Clean reports whether path was recorded with the given content hash.
func (c *Cache) Clean(path, hash string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.entries[path]
	if !exists || entry.Hash != hash {
		return false
	}
	if c.maxAge > 0 && time.Since(entry.CheckedAt) > c.maxAge {
		return false
	}
	return true
}

// Record marks path, with content hash, as needing no fixes.
func (c *Cache) Record(path, hash string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[path] = cacheEntry{Hash: hash, CheckedAt: time.Now()}
	c.dirty = true
}

// Len returns the number of recorded files.
func (c *Cache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.entries)
}

// SetMaxAge bounds how long an entry is trusted. Zero means forever.
func (c *Cache) SetMaxAge(duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.maxAge = duration
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.dirty = true
}

// HashContent returns the hex SHA-256 of data.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
