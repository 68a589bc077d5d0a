package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "nested.txt"), []byte("n"), 0644))

	output, err := ListFiles(dir)

	require.NoError(t, err)
	// Non-recursive and sorted.
	assert.Equal(t, "a.txt\nb.txt\nsub", output)
}

func TestListFiles_MissingDirectory(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("content here"), 0644))

	output, err := ReadFile(path)

	require.NoError(t, err)
	assert.Equal(t, "content here", output)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")

	output, err := WriteFile(path + "\nline one\nline two")

	require.NoError(t, err)
	assert.Contains(t, output, "Wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(data))
}

func TestWriteFile_MissingPath(t *testing.T) {
	_, err := WriteFile("\ncontent without a path")
	assert.Error(t, err)
}

func TestCreateDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")

	output, err := CreateDirectory(path)

	require.NoError(t, err)
	assert.Contains(t, output, "Directory created")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolvePath(t *testing.T) {
	t.Run("absolute passes through", func(t *testing.T) {
		path, err := resolvePath("/tmp/abs.txt")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/abs.txt", path)
	})

	t.Run("relative resolves against the working directory", func(t *testing.T) {
		cwd, err := os.Getwd()
		require.NoError(t, err)

		path, err := resolvePath("rel.txt")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(cwd, "rel.txt"), path)
	})

	t.Run("empty is rejected", func(t *testing.T) {
		_, err := resolvePath("   ")
		assert.Error(t, err)
	})
}
