package config

import (
	"os"
	"path/filepath"
)

// configNames are the project config file names searched per directory, in
// precedence order.
var configNames = []string{
	"Run.toml",
	".run.toml",
	".run.yml",
	".run.yaml",
	".run.json",
}

// FindLocalConfig finds the project config file by walking up directories
func FindLocalConfig(dir string) string {
	for {
		for _, name := range configNames {
			path := filepath.Join(dir, name)

			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}

		dir = parent
	}

	return ""
}
