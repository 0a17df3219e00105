package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kuranne/run/internal/config"
)

func TestOpenConfiguredCache_UsesProjectCacheDir(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Run.toml"), []byte("cache_dir = \".objcache\"\n"), 0o644))
	t.Chdir(dir)

	c, err := openConfiguredCache()
	require.NoError(t, err)
	defer c.Close()

	want, err := filepath.Abs(".objcache")
	require.NoError(t, err)
	assert.Equal(t, want, c.Root())
}

func TestOpenConfiguredCache_DefaultWithoutConfig(t *testing.T) {
	viper.Reset()

	t.Chdir(t.TempDir())

	c, err := openConfiguredCache()
	require.NoError(t, err)
	defer c.Close()

	want, err := filepath.Abs(config.DefaultCacheDir)
	require.NoError(t, err)
	assert.Equal(t, want, c.Root())
}
