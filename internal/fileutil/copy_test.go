package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "dangling")))

	assert.True(t, Exists(file))
	assert.True(t, Exists(dir))
	assert.True(t, Exists(filepath.Join(dir, "dangling")))
	assert.False(t, Exists(filepath.Join(dir, "missing")))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sh")
	dst := filepath.Join(dir, "dst.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\necho hi\n"), 0755))

	n, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(18), n)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

func TestCopyFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0644))
	require.NoError(t, os.WriteFile(dst, []byte("much longer old content"), 0600))

	_, err := CopyFile(src, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
}

func TestCopyFileReplacesReadOnlyDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0444))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0444))

	_, err := CopyFile(src, dst)
	require.NoError(t, err)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0444), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp file is renamed away")
}

func TestCopyFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)

	_, err = CopyFile(dir, filepath.Join(dir, "out"))
	assert.Error(t, err)
	assert.False(t, Exists(filepath.Join(dir, "out")))
}

func TestCopyTree(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub", "empty"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "top.txt"), []byte("12345"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "inner.txt"), []byte("abc"), 0600))
	require.NoError(t, os.Symlink("top.txt", filepath.Join(src, "link")))

	dst := filepath.Join(dir, "dst")
	n, err := CopyTree(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	data, err := os.ReadFile(filepath.Join(dst, "sub", "inner.txt"))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	info, err := os.Stat(filepath.Join(dst, "sub", "inner.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.DirExists(t, filepath.Join(dst, "sub", "empty"))

	link, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "top.txt", link)
}

func TestCopyTreeRefusesExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.MkdirAll(src, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.MkdirAll(dst, 0755))

	_, err := CopyTree(src, dst)
	assert.True(t, errors.Is(err, ErrDestinationExists), "got %v", err)
	assert.NoFileExists(t, filepath.Join(dst, "a.txt"), "trees are never merged")
}

func TestCopyTreeRejectsFileSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(src, nil, 0644))

	_, err := CopyTree(src, filepath.Join(dir, "dst"))
	assert.Error(t, err)
}

func TestCollisionName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan_dup1.txt"), nil, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "55081_dup1"), 0755))

	tests := []struct {
		name  string
		base  string
		isDir bool
		taken map[string]bool
		want  string
	}{
		{"file skips existing", "scan.txt", false, nil, "scan_dup2.txt"},
		{"file without extension", "README", false, nil, "README_dup1"},
		{"dotfile", ".env", false, nil, ".env_dup1"},
		{"double extension", "batch.tar.gz", false, nil, "batch.tar_dup1.gz"},
		{"directory skips existing", "55081", true, nil, "55081_dup2"},
		{"directory with dot", "v1.2", true, nil, "v1.2_dup1"},
		{"taken names are skipped", "a.txt", false, map[string]bool{"a_dup1.txt": true}, "a_dup2.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := func(name string) bool { return tt.taken[name] }
			assert.Equal(t, tt.want, CollisionName(dir, tt.base, tt.isDir, taken))
		})
	}
}

func TestCollisionNameNilTaken(t *testing.T) {
	assert.Equal(t, "x_dup1.bin", CollisionName(t.TempDir(), "x.bin", false, nil))
}

func TestCopyTreeResolvesSymlinkedSource(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "alias")))

	_, err := CopyTree(filepath.Join(dir, "alias"), filepath.Join(dir, "dst"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "dst", "a.txt"))
}
