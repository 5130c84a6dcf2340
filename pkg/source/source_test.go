package source

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ContentSource = (*FilesystemSource)(nil)
	_ ContentSource = (*MemorySource)(nil)
)

func TestFilesystemSource(t *testing.T) {
	src := NewFilesystem()

	content, err := src.Read("../../go.mod")
	require.NoError(t, err)
	assert.Contains(t, string(content), "module github.com/panbanda/deadfiles")

	_, err = src.Read("nonexistent.txt")
	assert.Error(t, err)
}

func TestFilesystemSourceEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.js")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	content, err := NewFilesystem().Read(path)
	require.NoError(t, err)
	assert.NotNil(t, content)
	assert.Empty(t, content)
}

func TestMemorySource(t *testing.T) {
	src := NewMemory(map[string]string{"/a.js": "import './b'", "/b.js": ""})

	content, err := src.Read("/a.js")
	require.NoError(t, err)
	assert.Equal(t, "import './b'", string(content))

	_, err = src.Read("/missing.js")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	content, err = src.Read("/b.js")
	require.NoError(t, err)
	assert.NotNil(t, content)
}
