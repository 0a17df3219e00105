package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuranne/run/internal/cache"
	"github.com/kuranne/run/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the object cache",
}

// openConfiguredCache resolves cache_dir through the regular config
// discovery before opening the cache.
func openConfiguredCache() (*cache.Cache, error) {
	cfg, err := config.NewLoader().LoadForCache()
	if err != nil {
		return nil, err
	}

	return cache.New(cfg.CacheDir)
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove cached build state",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConfiguredCache()
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Clear(); err != nil {
			return err
		}

		fmt.Println("Cache cleared")

		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cache statistics",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openConfiguredCache()
		if err != nil {
			return err
		}
		defer c.Close()

		count, size, err := c.Stats()
		if err != nil {
			return err
		}

		fmt.Printf("Entries: %d\nObject store: %d bytes\n", count, size)

		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
}
