package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRunFlags builds a command carrying the root command's bindable flags.
func newRunFlags() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().Bool("keep", false, "")
	cmd.Flags().BoolP("multi", "m", false, "")
	cmd.Flags().BoolP("time", "t", false, "")
	cmd.Flags().BoolP("dry-run", "d", false, "")
	cmd.Flags().Bool("no-cache", false, "")
	cmd.Flags().BoolP("verbose", "v", false, "")
	cmd.Flags().StringP("preset", "p", "", "")
	cmd.Flags().StringP("flags", "f", "", "")
	cmd.Flags().StringP("argument", "a", "", "")

	return cmd
}

func TestNewLoader(t *testing.T) {
	assert.NotNil(t, NewLoader())
}

func TestLoader_SetupViperDefaults(t *testing.T) {
	viper.Reset()
	NewLoader().setupViperDefaults()

	assert.Equal(t, DefaultCacheDir, viper.GetString("cache_dir"))
	assert.False(t, viper.GetBool("keep"))
	assert.False(t, viper.GetBool("no-cache"))
	assert.False(t, viper.GetBool("verbose"))
}

func TestLoader_LoadLocalConfig(t *testing.T) {
	viper.Reset()

	projectDir := t.TempDir()
	configContent := `
cache_dir = ".objcache"

[runner]
c = "clang"

[preset.release]
c = "-O3"
`
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "Run.toml"), []byte(configContent), 0o644))

	source := filepath.Join(projectDir, "main.c")
	require.NoError(t, os.WriteFile(source, []byte("int main() { return 0; }"), 0o644))

	NewLoader().loadLocalConfig([]string{source})

	assert.Equal(t, ".objcache", viper.GetString("cache_dir"))
	assert.Equal(t, "clang", viper.GetStringMapString("runner")["c"])
}

func TestLoader_LoadForRun_ProjectConfigSchema(t *testing.T) {
	viper.Reset()

	projectDir := t.TempDir()
	configContent := `
[runner]
c = "clang"

[preset.release]
c = "-O3"
`
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "Run.toml"), []byte(configContent), 0o644))

	source := filepath.Join(projectDir, "main.c")
	require.NoError(t, os.WriteFile(source, []byte("int main() { return 0; }"), 0o644))

	cmd := newRunFlags()
	require.NoError(t, cmd.Flags().Set("preset", "release"))

	cfg, err := NewLoader().LoadForRun(cmd, []string{source})
	require.NoError(t, err)

	rule := cfg.Registry().ResolveBuiltin(".c")
	require.NotNil(t, rule)
	assert.Equal(t, "clang", rule.Runner, "[runner] override must reach the registry")
	assert.Equal(t, "release", cfg.Preset)
	assert.Equal(t, []string{"-O3"}, cfg.PresetFlags("c"), "[preset.release] must resolve via -p")
}

func TestLoader_LoadForRun_FlagsOverrideConfig(t *testing.T) {
	viper.Reset()

	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "Run.toml"), []byte("keep = false\n"), 0o644))

	source := filepath.Join(projectDir, "main.c")
	require.NoError(t, os.WriteFile(source, []byte("int main() { return 0; }"), 0o644))

	cmd := newRunFlags()
	require.NoError(t, cmd.Flags().Set("keep", "true"))
	require.NoError(t, cmd.Flags().Set("flags", "-O2 -g"))

	cfg, err := NewLoader().LoadForRun(cmd, []string{source})
	require.NoError(t, err)

	assert.True(t, cfg.Keep, "an explicitly set flag wins over the config file")
	assert.Equal(t, []string{"-O2", "-g"}, cfg.ExtraFlags)
}

func TestLoader_LoadForRun_NoConfigFile(t *testing.T) {
	viper.Reset()

	projectDir := t.TempDir()
	source := filepath.Join(projectDir, "main.c")
	require.NoError(t, os.WriteFile(source, []byte("int main() { return 0; }"), 0o644))

	cfg, err := NewLoader().LoadForRun(newRunFlags(), []string{source})
	require.NoError(t, err)
	assert.Equal(t, DefaultCacheDir, cfg.CacheDir)
}

func TestLoader_LoadForCache_DiscoversCacheDir(t *testing.T) {
	viper.Reset()

	projectDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "Run.toml"), []byte("cache_dir = \".objcache\"\n"), 0o644))
	t.Chdir(projectDir)

	cfg, err := NewLoader().LoadForCache()
	require.NoError(t, err)
	assert.Equal(t, ".objcache", cfg.CacheDir)
}
