package write

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesDirsAtomically(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "app", "Tailwind_CSS.html")

	fw := NewFileWriter()
	require.NoError(t, fw.Write(target, []byte("<style></style>"), DefaultOptions()))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<style></style>", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestWriteRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.html")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0o644))

	fw := NewFileWriter()
	err := fw.Write(target, []byte("new"), WriteOptions{})
	assert.True(t, errors.Is(err, ErrExists))

	require.NoError(t, fw.Write(target, []byte("new"), WriteOptions{Overwrite: true}))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "Index.html")
	dst := filepath.Join(dir, "app", "Index.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("<p>index</p>"), 0o644))

	require.NoError(t, NewFileWriter().Copy(src, dst, DefaultOptions()))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "<p>index</p>", string(data))
	assert.FileExists(t, src)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestCopyKeepsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "run.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh"), 0o644))
	require.NoError(t, os.Chmod(src, 0o750))

	for name, opts := range map[string]WriteOptions{
		"atomic": DefaultOptions(),
		"direct": {CreateDirs: true, Overwrite: true},
	} {
		t.Run(name, func(t *testing.T) {
			dst := filepath.Join(dir, name, "run.sh")
			require.NoError(t, NewFileWriter().Copy(src, dst, opts))

			info, err := os.Stat(dst)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
		})
	}
}

func TestWriteMode(t *testing.T) {
	dir := t.TempDir()
	fw := NewFileWriter()

	atomicPath := filepath.Join(dir, "atomic.html")
	require.NoError(t, fw.Write(atomicPath, []byte("x"), DefaultOptions()))
	info, err := os.Stat(atomicPath)
	require.NoError(t, err)
	assert.Equal(t, FileMode, info.Mode().Perm())

	existing := filepath.Join(dir, "existing.html")
	require.NoError(t, os.WriteFile(existing, []byte("old"), 0o600))
	require.NoError(t, fw.Write(existing, []byte("new"), WriteOptions{Overwrite: true}))
	info, err = os.Stat(existing)
	require.NoError(t, err)
	assert.Equal(t, FileMode, info.Mode().Perm())
}

func TestMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app", "server", "Server_Main.js")
	dst := filepath.Join(dir, "app", "Server_Main.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	require.NoError(t, os.WriteFile(src, []byte("function doGet() {}"), 0o644))

	require.NoError(t, NewFileWriter().Move(src, dst, DefaultOptions()))

	assert.NoFileExists(t, src)
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "function doGet() {}", string(data))
}

func TestNeedsWrite(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.html")
	fw := NewFileWriter()

	needs, err := fw.NeedsWrite(target, []byte("x"))
	require.NoError(t, err)
	assert.True(t, needs)

	require.NoError(t, os.WriteFile(target, []byte("x"), 0o644))
	needs, err = fw.NeedsWrite(target, []byte("x"))
	require.NoError(t, err)
	assert.False(t, needs)

	needs, err = fw.NeedsWrite(target, []byte("y"))
	require.NoError(t, err)
	assert.True(t, needs)
}
