// Package artifacts tracks files produced transiently by one run and
// reclaims them afterwards. The persistent object cache owns its own files;
// nothing under the cache's object store is ever registered here, except
// objects produced by a cache-disabled run, which cannot be reused.
package artifacts

import (
	"log/slog"
	"os"
	"sync"
)

// Lifecycle is the transient artifact set for one invocation.
type Lifecycle struct {
	logger *slog.Logger

	mu    sync.Mutex
	paths []string
}

// NewLifecycle creates an empty transient set.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		logger: slog.Default(),
	}
}

// WithLogger sets a custom logger.
func (l *Lifecycle) WithLogger(logger *slog.Logger) *Lifecycle {
	l.logger = logger
	return l
}

// Register appends a path to the run's transient set.
func (l *Lifecycle) Register(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.paths = append(l.paths, path)
}

// Paths returns the registered paths in registration order.
func (l *Lifecycle) Paths() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.paths))
	copy(out, l.paths)

	return out
}

// Sweep deletes every registered path unless keep is set. Cleanup is
// best-effort: individual deletion failures are logged as warnings and
// never escalated to a run failure.
func (l *Lifecycle) Sweep(keep bool) {
	if keep {
		return
	}

	l.mu.Lock()
	paths := l.paths
	l.paths = nil
	l.mu.Unlock()

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			l.logger.Warn("failed to remove transient artifact", "path", path, "error", err)
		}
	}
}
