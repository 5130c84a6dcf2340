// Package cache stores per-file analysis results on disk, invalidated
// by content hash and age.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

const entryExt = ".json"

// Cache maps a key, normally a file path, to the analysis result of one
// version of that file. A nil or disabled Cache misses every lookup and
// ignores writes.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// Entry is the on-disk record for one key.
type Entry struct {
	Key       string    `json:"key"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// Stats summarises what the cache directory holds.
type Stats struct {
	Entries   int   `json:"entries"`
	TotalSize int64 `json:"total_size"`
}

// New opens a cache under dir, creating it if needed. Entries older than
// ttlHours are discarded on lookup; zero keeps them forever.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: time.Duration(ttlHours) * time.Hour, enabled: true}, nil
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// ContentHash returns the hex BLAKE3 digest of src.
func ContentHash(src []byte) string {
	sum := blake3.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Lookup returns the data stored for key when it was recorded against the
// same content hash and has not expired.
func (c *Cache) Lookup(key, hash string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}

	path := c.entryPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var e Entry
	if json.Unmarshal(raw, &e) != nil {
		return nil, false
	}
	// File names are a 64-bit digest of the key; the stored key decides.
	if e.Key != key || e.Hash != hash {
		return nil, false
	}
	if c.expired(e) {
		_ = os.Remove(path)
		return nil, false
	}
	return e.Data, true
}

// Store records data for key under the given content hash, replacing any
// previous entry.
func (c *Cache) Store(key, hash string, data []byte) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(Entry{Key: key, Hash: hash, Timestamp: time.Now(), Data: data})
	if err != nil {
		return err
	}
	return os.WriteFile(c.entryPath(key), raw, 0o600)
}

// Clear deletes the cache directory.
func (c *Cache) Clear() error {
	if !c.Enabled() {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Stats counts entries in the cache directory. A missing directory is empty.
func (c *Cache) Stats() (Stats, error) {
	var s Stats
	if !c.Enabled() {
		return s, nil
	}
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	for _, de := range entries {
		if de.IsDir() || filepath.Ext(de.Name()) != entryExt {
			continue
		}
		if info, err := de.Info(); err == nil {
			s.Entries++
			s.TotalSize += info.Size()
		}
	}
	return s, nil
}

func (c *Cache) expired(e Entry) bool {
	return c.ttl > 0 && time.Since(e.Timestamp) > c.ttl
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, strconv.FormatUint(xxhash.Sum64String(key), 16)+entryExt)
}
