package compiler

import (
	"path/filepath"

	"github.com/kuranne/run/internal/runerr"
)

// Link combines a complete object set into one executable with a single
// compiler-as-linker invocation. flags carries extra and preset flags;
// includeFlags the derived -I directives. A non-zero exit aborts the run
// before any execution attempt.
func Link(exec Runner, compilerCmd string, objects []string, target string, flags, includeFlags []string) error {
	argv := make([]string, 0, 3+len(objects)+len(flags)+len(includeFlags))
	argv = append(argv, compilerCmd)
	argv = append(argv, objects...)
	argv = append(argv, "-o", target)
	argv = append(argv, flags...)
	argv = append(argv, includeFlags...)

	if err := exec.Run("LINK", argv); err != nil {
		return runerr.Wrap(runerr.KindCompilation, err, "failed to link %s", filepath.Base(target))
	}

	return nil
}

func parentDir(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path)
	}

	return filepath.Dir(abs)
}
