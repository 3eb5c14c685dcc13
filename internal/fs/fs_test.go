package fs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, dir, name, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestBackupPreservesContentModeAndMtime(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := writeFixture(t, dir, "repl.py", "print('old')\n", 0o640)
	mtime := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, os.Chtimes(target, mtime, mtime))

	backup, err := Backup(target)
	require.NoError(t, err)
	assert.Equal(t, target+".bak", backup)

	content, err := os.ReadFile(backup)
	require.NoError(t, err)
	assert.Equal(t, "print('old')\n", string(content))

	info, err := os.Stat(backup)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime), "mtime %v", info.ModTime())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	}
}

func TestBackupFailsForMissingSource(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Backup(filepath.Join(dir, "missing.py"))
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "missing.py.bak"))
}

func TestWriteAtomicReplacesContentAndKeepsMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := writeFixture(t, dir, "repl.py", "old\n", 0o600)

	require.NoError(t, WriteAtomic(target, []byte("new\n")))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new\n", string(content))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestGetFileSHA256MatchesHashString(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.txt", "hello\n", 0o644)

	sum, err := GetFileSHA256(path)
	require.NoError(t, err)
	assert.Equal(t, HashString("hello\n"), sum)
}

func TestIsFileAndIsDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFixture(t, dir, "a.txt", "x", 0o644)

	assert.True(t, IsFile(path))
	assert.False(t, IsFile(dir))
	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(path))
	assert.False(t, IsFile(filepath.Join(dir, "nope")))
}
