package overlay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/melih/patchwork-docker/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	exampleFile  = "test-file"
	exampleFile2 = "test-file-2"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func entries(t *testing.T, dir string) int {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(list)
}

func TestCopyEmptyDirToEmptyDir(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	require.NoError(t, Copy(src, dest))
	assert.Equal(t, 0, entries(t, dest))
}

func TestCopyDirToEmptyDir(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, exampleFile), "")

	require.NoError(t, Copy(src, dest))
	assert.FileExists(t, filepath.Join(dest, exampleFile))
	assert.Equal(t, 1, entries(t, dest))
}

func TestCopyDirMergesWithDest(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(dest, exampleFile2), "kept")
	writeFile(t, filepath.Join(dest, "sub", "old"), "old")
	writeFile(t, filepath.Join(src, exampleFile), "new")
	writeFile(t, filepath.Join(src, "sub", "nested"), "nested")

	require.NoError(t, Copy(src, dest))
	assert.Equal(t, 3, entries(t, dest))
	assert.Equal(t, "kept", readFile(t, filepath.Join(dest, exampleFile2)))
	assert.Equal(t, "old", readFile(t, filepath.Join(dest, "sub", "old")))
	assert.Equal(t, "nested", readFile(t, filepath.Join(dest, "sub", "nested")))
}

func TestCopyDirOverwritesCollisions(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(dest, "sub", exampleFile), "1")
	writeFile(t, filepath.Join(src, "sub", exampleFile), "2")

	require.NoError(t, Copy(src, dest))
	assert.Equal(t, "2", readFile(t, filepath.Join(dest, "sub", exampleFile)))
}

func TestCopyDirCreatesMissingDest(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, exampleFile), "x")
	dest := filepath.Join(t.TempDir(), "a", "b")

	require.NoError(t, Copy(src, dest))
	assert.Equal(t, "x", readFile(t, filepath.Join(dest, exampleFile)))
}

func TestCopyFileIntoDir(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	file := filepath.Join(src, exampleFile)
	writeFile(t, file, "content")

	require.NoError(t, Copy(file, dest))
	assert.Equal(t, "content", readFile(t, filepath.Join(dest, exampleFile)))
	assert.Equal(t, 1, entries(t, dest))
}

func TestCopyFileOverwritesInDir(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	file := filepath.Join(src, exampleFile)
	writeFile(t, filepath.Join(dest, exampleFile), "1")
	writeFile(t, filepath.Join(dest, exampleFile2), "1")
	writeFile(t, file, "2")

	require.NoError(t, Copy(file, dest))
	assert.Equal(t, "2", readFile(t, filepath.Join(dest, exampleFile)))
	assert.Equal(t, 2, entries(t, dest))
}

func TestCopyFileToNewPath(t *testing.T) {
	src := filepath.Join(t.TempDir(), exampleFile)
	writeFile(t, src, "data")
	dest := filepath.Join(t.TempDir(), "nested", "renamed")

	require.NoError(t, Copy(src, dest))
	assert.Equal(t, "data", readFile(t, dest))
}

func TestCopyFilePreservesMode(t *testing.T) {
	src := filepath.Join(t.TempDir(), "run.sh")
	writeFile(t, src, "#!/bin/sh\n")
	require.NoError(t, os.Chmod(src, 0o755))
	dest := filepath.Join(t.TempDir(), "run.sh")
	writeFile(t, dest, "old")

	require.NoError(t, Copy(src, dest))
	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopySymlinkReplacesExisting(t *testing.T) {
	src, dest := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(src, "target"), "t")
	require.NoError(t, os.Symlink("target", filepath.Join(src, "link")))
	writeFile(t, filepath.Join(dest, "link"), "was a file")

	require.NoError(t, Copy(src, dest))
	link, err := os.Readlink(filepath.Join(dest, "link"))
	require.NoError(t, err)
	assert.Equal(t, "target", link)
}

func TestCopyLastWriteWins(t *testing.T) {
	first, second, dest := t.TempDir(), t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(first, "config.json"), `{"n":1}`)
	writeFile(t, filepath.Join(second, "config.json"), `{"n":2}`)

	require.NoError(t, Copy(filepath.Join(first, "config.json"), dest))
	require.NoError(t, Copy(filepath.Join(second, "config.json"), dest))
	assert.Equal(t, `{"n":2}`, readFile(t, filepath.Join(dest, "config.json")))

	require.NoError(t, Copy(filepath.Join(first, "config.json"), dest))
	assert.Equal(t, `{"n":1}`, readFile(t, filepath.Join(dest, "config.json")))
}

func TestCopyMissingSource(t *testing.T) {
	dest := t.TempDir()
	err := Copy(filepath.Join(t.TempDir(), "missing"), dest)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Equal(t, 0, entries(t, dest))
}

func TestCopyDirOntoFileFails(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "x"), "x")
	dest := filepath.Join(t.TempDir(), "file")
	writeFile(t, dest, "file")

	assert.Error(t, Copy(src, dest))
}

func TestCopyDirIntoItsOwnSubdirectory(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "Dockerfile"), "FROM scratch\n")
	writeFile(t, filepath.Join(src, "sub", "file"), "f")
	dest := filepath.Join(src, "out")

	require.NoError(t, Copy(src, dest))
	assert.Equal(t, "FROM scratch\n", readFile(t, filepath.Join(dest, "Dockerfile")))
	assert.Equal(t, "f", readFile(t, filepath.Join(dest, "sub", "file")))
	assert.NoDirExists(t, filepath.Join(dest, "out"))
	assert.Equal(t, 2, entries(t, dest))
}

func TestCopyDirOntoItself(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, exampleFile), "x")

	require.NoError(t, Copy(src, src))
	assert.Equal(t, 1, entries(t, src))
	assert.Equal(t, "x", readFile(t, filepath.Join(src, exampleFile)))
}
