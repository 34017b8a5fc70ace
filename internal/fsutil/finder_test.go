package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "z.hcl"))
	touch(t, filepath.Join(root, "b", "engine.hcl"))
	touch(t, filepath.Join(root, "a.hcl"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, ".cache", "stale.hcl"))

	t.Run("directory is walked recursively and sorted", func(t *testing.T) {
		files, err := FindFilesByExtension(root, ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{
			filepath.Join(root, "a.hcl"),
			filepath.Join(root, "b", "engine.hcl"),
			filepath.Join(root, "z.hcl"),
		}, files)
	})

	t.Run("single file", func(t *testing.T) {
		files, err := FindFilesByExtension(filepath.Join(root, "a.hcl"), ".hcl")
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "a.hcl")}, files)

		files, err = FindFilesByExtension(filepath.Join(root, "notes.txt"), ".hcl")
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := FindFilesByExtension(filepath.Join(root, "nope"), ".hcl")
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty extension panics", func(t *testing.T) {
		assert.Panics(t, func() { _, _ = FindFilesByExtension(root, "") })
	})
}
