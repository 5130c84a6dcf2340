package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabled(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "never"), 24, false)
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Store("k", "h", []byte("v")))
	_, ok := c.Lookup("k", "h")
	assert.False(t, ok)

	_, err = os.Stat(filepath.Join(t.TempDir(), "never"))
	assert.True(t, os.IsNotExist(err))
}

func TestNilCacheIsDisabled(t *testing.T) {
	var c *Cache
	assert.False(t, c.Enabled())
	_, ok := c.Lookup("k", "h")
	assert.False(t, ok)
	assert.NoError(t, c.Store("k", "h", nil))
}

func TestSetLookup(t *testing.T) {
	c, err := New(t.TempDir(), 24, true)
	require.NoError(t, err)

	hash := ContentHash([]byte("import a from './a'"))
	require.NoError(t, c.Store("/src/main.js", hash, []byte(`{"static":["./a"]}`)))

	data, ok := c.Lookup("/src/main.js", hash)
	require.True(t, ok)
	assert.JSONEq(t, `{"static":["./a"]}`, string(data))

	_, ok = c.Lookup("/src/main.js", ContentHash([]byte("changed")))
	assert.False(t, ok, "stale content hash must miss")

	_, ok = c.Lookup("/src/other.js", hash)
	assert.False(t, ok)
}

func TestExpiredEntry(t *testing.T) {
	c, err := New(t.TempDir(), 1, true)
	require.NoError(t, err)
	require.NoError(t, c.Store("k", "h", []byte("v")))

	c.ttl = time.Nanosecond
	time.Sleep(time.Millisecond)

	_, ok := c.Lookup("k", "h")
	assert.False(t, ok)
	_, err = os.Stat(c.entryPath("k"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")
}

func TestContentHash(t *testing.T) {
	a := ContentHash([]byte("a"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, ContentHash([]byte("a")))
	assert.NotEqual(t, a, ContentHash([]byte("b")))
}

func TestStatsAndClear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, 24, true)
	require.NoError(t, err)

	require.NoError(t, c.Store("a", "1", []byte("x")))
	require.NoError(t, c.Store("b", "2", []byte("y")))

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Positive(t, stats.TotalSize)

	require.NoError(t, c.Clear())
	stats, err = c.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.Entries)
}
