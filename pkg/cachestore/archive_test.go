package cachestore

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(old)
	})
}

func TestCreateArchive(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.MkdirAll(filepath.Join(".ccache", "0"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(".ccache", "ccache.conf"), []byte("max_size = 5.0G\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(".ccache", "0", "entry"), []byte("object code"), 0o644))

	archive, size, err := CreateArchive(context.Background(), []string{".ccache"})
	require.NoError(t, err)
	defer os.Remove(archive)

	info, err := os.Stat(archive)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), size)
	assert.Greater(t, size, int64(0))

	f, err := os.Open(archive)
	require.NoError(t, err)
	defer f.Close()

	zr, err := zstd.NewReader(f)
	require.NoError(t, err)
	defer zr.Close()

	names := map[string]string{}
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		names[hdr.Name] = string(content)
	}

	assert.Contains(t, names, ".ccache")
	assert.Equal(t, "max_size = 5.0G\n", names[".ccache/ccache.conf"])
	assert.Equal(t, "object code", names[".ccache/0/entry"])
}

func TestCreateArchiveMissingPath(t *testing.T) {
	chdir(t, t.TempDir())

	_, _, err := CreateArchive(context.Background(), []string{".ccache"})
	assert.ErrorContains(t, err, "archive .ccache")
}
