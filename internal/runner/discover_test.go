package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()

	for _, f := range files {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func TestFindSourceFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"main.c",
		"lib.h",
		filepath.Join("src", "util.c"),
		filepath.Join("src", "util.hpp"),
		"readme.md",
		filepath.Join(".git", "junk.c"),
		filepath.Join(".run_cache", "objs", "stale.c"),
	)

	files, err := FindSourceFiles(root, -1)
	require.NoError(t, err)
	require.Len(t, files, 4)

	bases := make([]string, len(files))
	for i, f := range files {
		bases[i] = filepath.Base(f)
	}

	// Sources first, so the first entry names the executable.
	assert.Equal(t, []string{"main.c", "util.c", "lib.h", "util.hpp"}, bases)
}

func TestFindSourceFiles_DepthLimit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"main.c",
		filepath.Join("a", "one.c"),
		filepath.Join("a", "b", "two.c"),
	)

	files, err := FindSourceFiles(root, 0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "main.c", filepath.Base(files[0]))

	files, err = FindSourceFiles(root, 1)
	require.NoError(t, err)
	assert.Len(t, files, 2)

	files, err = FindSourceFiles(root, -1)
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestFindSourceFiles_Empty(t *testing.T) {
	files, err := FindSourceFiles(t.TempDir(), -1)
	require.NoError(t, err)
	assert.Empty(t, files)
}
