package config

import (
	"github.com/spf13/viper"

	"github.com/kuranne/run/internal/toolchain"
	"github.com/kuranne/run/internal/utils"
)

// Default configuration values
const (
	DefaultCacheDir = ".run_cache"
)

// Holds the resolved configuration for one invocation: merged config-file
// settings plus bound command-line flags.
type Config struct {
	// Runner command overrides per language (e.g. c = "clang")
	Runners map[string]string

	// Preset flag tables: preset name -> language -> flag string
	Presets map[string]map[string]string

	// User-declared custom languages, validated at load time
	Languages []toolchain.Rule

	// Active preset name (from -p)
	Preset string

	// Extra compiler flags (from -f), already tokenized
	ExtraFlags []string

	// Arguments passed to the executed program (from -a), already tokenized
	RunArgs []string

	// Cache root directory
	CacheDir string

	// Keep produced executables after the run
	Keep bool

	// Multi-file compile-and-link mode
	Multi bool

	// Print elapsed time for the executed binary
	Timed bool

	// Print commands without spawning them
	DryRun bool

	// Disable the object cache for this run
	NoCache bool

	// Enable verbose output
	Verbose bool
}

// Load builds a Config from the merged viper state. Custom language
// declarations are validated here, once, so a malformed section fails
// before any build work begins.
func Load() (*Config, error) {
	cfg := &Config{
		Runners:    viper.GetStringMapString("runner"),
		Preset:     viper.GetString("preset_name"),
		ExtraFlags: utils.SplitFlags(viper.GetString("flags")),
		RunArgs:    utils.SplitFlags(viper.GetString("argument")),
		CacheDir:   viper.GetString("cache_dir"),
		Keep:       viper.GetBool("keep"),
		Multi:      viper.GetBool("multi"),
		Timed:      viper.GetBool("time"),
		DryRun:     viper.GetBool("dry-run"),
		NoCache:    viper.GetBool("no-cache"),
		Verbose:    viper.GetBool("verbose"),
	}

	languages, err := toolchain.ParseLanguages(viper.GetStringMap("language"))
	if err != nil {
		return nil, err
	}
	cfg.Languages = languages

	cfg.Presets = make(map[string]map[string]string)
	for name, section := range viper.GetStringMap("preset") {
		table, ok := section.(map[string]any)
		if !ok {
			continue
		}

		langFlags := make(map[string]string)
		for lang, flags := range table {
			if s, ok := flags.(string); ok {
				langFlags[lang] = s
			}
		}

		cfg.Presets[name] = langFlags
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir
	}

	return cfg, nil
}

// PresetFlags returns the tokenized flags of the active preset for a
// language. Nil when no preset is active or the preset has no entry for
// the language.
func (c *Config) PresetFlags(lang string) []string {
	if c.Preset == "" {
		return nil
	}

	table, ok := c.Presets[c.Preset]
	if !ok {
		return nil
	}

	return utils.SplitFlags(table[lang])
}

// Registry builds the toolchain registry from the loaded runner overrides
// and custom language rules.
func (c *Config) Registry() *toolchain.Registry {
	return toolchain.NewRegistry(c.Runners, c.Languages)
}
