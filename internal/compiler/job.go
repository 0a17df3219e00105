// Package compiler turns source files into object files with bounded
// parallelism and links a complete object set into one executable. Linking
// is all-or-nothing: it never runs over a partial object set.
package compiler

import (
	"fmt"
	"os"

	"github.com/kuranne/run/internal/runerr"
)

// Runner is the process-execution primitive used for compile and link
// invocations.
type Runner interface {
	Run(tag string, argv []string) error
}

// ObjectCache decides staleness and owns durable object storage. Satisfied
// by cache.Cache and cache.Disabled.
type ObjectCache interface {
	ObjectPath(source string) (string, error)
	IsStale(source string) bool
	Record(source string)
}

// CompileOne compiles a single source file to its object file. When the
// source is not stale and its object already exists, the existing object
// path is returned without spawning the compiler. The cache entry is
// updated only after a successful compile; a failed compile never marks a
// file as up to date.
func CompileOne(exec Runner, objCache ObjectCache, compilerCmd, source string, flags []string) (string, error) {
	obj, err := objCache.ObjectPath(source)
	if err != nil {
		return "", runerr.Wrap(runerr.KindCompilation, err, "failed to resolve object path for %s", source)
	}

	if !objCache.IsStale(source) {
		if _, err := os.Stat(obj); err == nil {
			// Cache hit
			return obj, nil
		}
	}

	argv := make([]string, 0, 4+len(flags))
	argv = append(argv, compilerCmd, "-c", source, "-o", obj)
	argv = append(argv, flags...)

	if err := exec.Run("COMPILE", argv); err != nil {
		return "", runerr.Wrap(runerr.KindCompilation, err, "failed to compile %s", source)
	}

	objCache.Record(source)

	return obj, nil
}

// IncludeDirs derives the -I flags for a file set: one per unique parent
// directory of any header present, in first-seen order.
func IncludeDirs(headers []string) []string {
	seen := make(map[string]bool)

	var flags []string
	for _, h := range headers {
		dir := parentDir(h)
		if !seen[dir] {
			seen[dir] = true
			flags = append(flags, fmt.Sprintf("-I%s", dir))
		}
	}

	return flags
}
