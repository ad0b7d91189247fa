package fsutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chainlog-project/chainlog/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite_CreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target")

	require.NoError(t, fsutil.AtomicWrite(path, []byte("payload"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestAtomicWrite_Overwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target")

	require.NoError(t, fsutil.AtomicWrite(path, []byte("first"), 0644))
	require.NoError(t, fsutil.AtomicWrite(path, []byte("second"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestAtomicWrite_NoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, fsutil.AtomicWrite(filepath.Join(dir, "target"), []byte("x"), 0644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.False(t, strings.HasPrefix(entry.Name(), fsutil.TempPrefix),
			"leftover temp file %s", entry.Name())
	}
}

func TestAtomicWrite_Permissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "target")

	require.NoError(t, fsutil.AtomicWrite(path, []byte("x"), 0600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAtomicWrite_MissingDirectory(t *testing.T) {
	err := fsutil.AtomicWrite(filepath.Join(t.TempDir(), "missing", "target"), []byte("x"), 0644)
	assert.Error(t, err)
}
