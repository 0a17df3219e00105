package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForRun loads configuration for a compile-and-run invocation: viper
// defaults, then the global config file, then the nearest project config
// (walking up from the first source file), then bound command flags.
func (l *Loader) LoadForRun(cmd *cobra.Command, args []string) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(args)
	l.bindCommandFlags(cmd)

	return Load()
}

// LoadForCache loads configuration for a cache subcommand: viper defaults,
// the global config file, then the nearest project config above the working
// directory. Cache subcommands carry no bindable flags.
func (l *Loader) LoadForCache() (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.loadLocalConfig(nil)

	return Load()
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("cache_dir", DefaultCacheDir)
	viper.SetDefault("keep", false)
	viper.SetDefault("time", false)
	viper.SetDefault("dry-run", false)
	viper.SetDefault("no-cache", false)
	viper.SetDefault("verbose", false)
}

// loadGlobalConfig loads the global configuration from the user config dir
func (l *Loader) loadGlobalConfig() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}

	globalDir := filepath.Join(configDir, "run")

	for _, ext := range []string{"toml", "yml", "yaml", "json"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig loads the nearest project configuration, searching upward
// from the first source file's directory (or the working directory when no
// files were given).
func (l *Loader) loadLocalConfig(args []string) {
	dir := ""

	if len(args) > 0 {
		absFirstFile, err := filepath.Abs(args[0])
		if err != nil {
			return // silently ignore, Load() will handle validation
		}

		dir = filepath.Dir(absFirstFile)
	} else if cwd, err := os.Getwd(); err == nil {
		dir = cwd
	}

	if dir == "" {
		return
	}

	localPath := FindLocalConfig(dir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	_ = viper.BindPFlag("keep", cmd.Flags().Lookup("keep"))
	_ = viper.BindPFlag("multi", cmd.Flags().Lookup("multi"))
	_ = viper.BindPFlag("time", cmd.Flags().Lookup("time"))
	_ = viper.BindPFlag("dry-run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("no-cache", cmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("verbose", cmd.Flags().Lookup("verbose"))
	// The -p flag binds to preset_name: the preset key itself is the
	// [preset.<name>] table in config files.
	_ = viper.BindPFlag("preset_name", cmd.Flags().Lookup("preset"))
	_ = viper.BindPFlag("flags", cmd.Flags().Lookup("flags"))
	_ = viper.BindPFlag("argument", cmd.Flags().Lookup("argument"))
}
