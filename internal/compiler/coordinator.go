package compiler

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/kuranne/run/internal/runerr"
)

// maxWorkers caps the compile pool so large batches do not oversubscribe
// the machine.
const maxWorkers = 32

// DefaultWorkerCount sizes the compile pool: CPU count plus a small floor
// to keep I/O-bound compiler invocations overlapped, capped at maxWorkers.
func DefaultWorkerCount() int {
	n := runtime.NumCPU() + 4
	if n > maxWorkers {
		n = maxWorkers
	}

	return n
}

// Coordinator fans compile jobs out across a bounded worker pool and gates
// linking on full success.
type Coordinator struct {
	exec     Runner
	objCache ObjectCache
	workers  int
	logger   *slog.Logger
}

// NewCoordinator creates a coordinator with the default pool size.
func NewCoordinator(exec Runner, objCache ObjectCache) *Coordinator {
	return &Coordinator{
		exec:     exec,
		objCache: objCache,
		workers:  DefaultWorkerCount(),
		logger:   slog.Default(),
	}
}

// WithWorkers overrides the pool size. Used by tests.
func (c *Coordinator) WithWorkers(n int) *Coordinator {
	if n > 0 {
		c.workers = n
	}

	return c
}

// WithLogger sets a custom logger.
func (c *Coordinator) WithLogger(logger *slog.Logger) *Coordinator {
	c.logger = logger
	return c
}

// result is one compile job's outcome, indexed by submission order.
type result struct {
	object string
	err    error
}

// BuildObjects compiles every source, running jobs concurrently up to the
// pool limit and waiting for all of them. A job failure does not cancel
// in-flight siblings; every submitted job finishes so the caller sees all
// compile errors in one pass. On any failure the returned error aggregates
// every failed file, and the returned object list holds the objects that
// were produced (the caller must not link, but may still need to sweep
// them). On success the object list is complete, in source order.
func (c *Coordinator) BuildObjects(compilerCmd string, sources []string, flags []string) ([]string, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	c.logger.Info("compiling", "files", len(sources), "workers", c.workers)

	results := make([]result, len(sources))

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i, source := range sources {
		g.Go(func() error {
			obj, err := CompileOne(c.exec, c.objCache, compilerCmd, source, flags)
			results[i] = result{object: obj, err: err}

			// Failures are collected, not returned: returning an error
			// here would stop errgroup from starting queued jobs.
			return nil
		})
	}

	_ = g.Wait()

	var merr *multierror.Error
	objects := make([]string, 0, len(sources))

	for i, res := range results {
		if res.err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", filepath.Base(sources[i]), res.err))
			continue
		}

		objects = append(objects, res.object)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return objects, runerr.Wrap(runerr.KindCompilation, err,
			"%d of %d files failed to compile", merr.Len(), len(sources))
	}

	return objects, nil
}
