package runner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kuranne/run/internal/cache"
	"github.com/kuranne/run/internal/toolchain"
)

// FindSourceFiles walks root collecting C-family sources and headers for
// the -L auto-link mode. maxDepth limits how many directory levels below
// root are entered; a negative depth means unlimited. Hidden directories
// and the cache directory are skipped. Sources come before headers in the
// result, each group sorted, so the first source names the executable
// deterministically.
func FindSourceFiles(root string, maxDepth int) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var sources, headers []string

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}

			name := d.Name()
			if strings.HasPrefix(name, ".") || name == cache.DefaultCacheDir {
				return filepath.SkipDir
			}

			if maxDepth >= 0 && depthBelow(absRoot, path) > maxDepth {
				return filepath.SkipDir
			}

			return nil
		}

		ext := filepath.Ext(path)
		switch {
		case toolchain.IsCFamilySource(ext):
			sources = append(sources, path)
		case toolchain.IsCFamilyHeader(ext):
			headers = append(headers, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(sources)
	sort.Strings(headers)

	return append(sources, headers...), nil
}

func depthBelow(root, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return 0
	}

	return len(strings.Split(rel, string(filepath.Separator)))
}
