package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem(t *testing.T) {
	t.Parallel()

	var fsys FileSystem = OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "out", "nested")
	require.NoError(t, fsys.MkdirAll(dir, 0o755))

	path := filepath.Join(dir, "roi.png")
	w, err := fsys.Create(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	info, err := fsys.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
}

func TestMemoryFileSystemReadWrite(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	src := []byte{1, 2, 3, 4}
	require.NoError(t, m.WriteFile("/frames/../frames/a.raw", src, 0o644))
	src[0] = 9

	got, err := m.ReadFile("/frames/a.raw")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	info, err := m.Stat("/frames/a.raw")
	require.NoError(t, err)
	assert.Equal(t, "a.raw", info.Name())
	assert.Equal(t, int64(4), info.Size())
	assert.False(t, info.IsDir())
}

func TestMemoryFileSystemMissing(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	_, err := m.ReadFile("/nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = m.Stat("/nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystemCreate(t *testing.T) {
	t.Parallel()

	m := NewMemoryFileSystem()
	_, err := m.Create("/out/roi.html")
	require.Error(t, err, "parent directory does not exist yet")

	require.NoError(t, m.MkdirAll("/out", 0o755))
	info, err := m.Stat("/out")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	w, err := m.Create("/out/roi.html")
	require.NoError(t, err)
	_, _ = w.Write([]byte("<html>"))

	pending, err := m.ReadFile("/out/roi.html")
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, w.Close())
	data, err := m.ReadFile("/out/roi.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>", string(data))
}
