// Package cache provides the incremental-build object cache.
//
// The cache has two halves under one root directory (.run_cache/):
//
//  1. A BoltDB table mapping the absolute path of every source file ever
//     compiled through the cache to the content hash it had at its last
//     successful compilation.
//  2. An object store (objs/) holding one object file per source, named by
//     a hash of the source's absolute path plus its original file name, so
//     the same source always maps to the same object across runs.
//
// Nothing is created on disk by constructing a Cache. The object directory
// appears on the first ObjectPath call and the table file on the first
// Record. Every Record is one committed transaction, so a killed process
// never loses completed work. The cache is an optimization, not a
// correctness requirement: read and write failures degrade to "treat as
// stale" and "skip persistence" and are logged, never escalated.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const (
	// DefaultCacheDir is the default cache directory name
	DefaultCacheDir = ".run_cache"

	// bucketName is the BoltDB bucket name for source hash entries
	bucketName = "sources"

	dbFileName  = "cache.db"
	objsDirName = "objs"
)

// Cache manages the source hash table and the object store.
type Cache struct {
	root   string
	logger *slog.Logger

	mu sync.Mutex
	db *bbolt.DB // nil until the table is first opened
}

// New creates a cache rooted at cacheDir. If cacheDir is empty, uses
// DefaultCacheDir in the current working directory. No filesystem writes
// happen here; on-disk structure appears lazily on first use.
func New(cacheDir string) (*Cache, error) {
	if cacheDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}

		cacheDir = filepath.Join(cwd, DefaultCacheDir)
	}

	abs, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve cache directory: %w", err)
	}

	return &Cache{
		root:   abs,
		logger: slog.Default(),
	}, nil
}

// WithLogger sets a custom logger.
func (c *Cache) WithLogger(logger *slog.Logger) *Cache {
	c.logger = logger
	return c
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Close closes the table if it was opened.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closeLocked()
}

func (c *Cache) closeLocked() error {
	if c.db == nil {
		return nil
	}

	err := c.db.Close()
	c.db = nil

	return err
}

// ObjectPath returns the object file path for a source file. The mapping is
// a pure function of the source's absolute path, so the same source resolves
// to the same object across process restarts. The object directory is
// created lazily on first call.
func (c *Cache) ObjectPath(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source path: %w", err)
	}

	objsDir := filepath.Join(c.root, objsDirName)
	if err := os.MkdirAll(objsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.o", HashString(abs), filepath.Base(abs))

	return filepath.Join(objsDir, name), nil
}

// IsStale reports whether a source file needs recompiling: true when the
// file has no recorded entry or its current content hash differs from the
// recorded one. Read-only with respect to the persisted table; a table that
// cannot be read is treated as having no entry.
func (c *Cache) IsStale(source string) bool {
	abs, err := filepath.Abs(source)
	if err != nil {
		return true
	}

	current, err := HashFile(abs)
	if err != nil {
		return true
	}

	recorded, ok := c.lookup(abs)
	if !ok {
		return true
	}

	return recorded != current
}

// Record computes the current content hash of source and stores it under
// the source's absolute path, committed to disk immediately. Persistence
// failures are logged, not returned: a compile that succeeded is not a
// failure merely because bookkeeping could not be saved.
func (c *Cache) Record(source string) {
	abs, err := filepath.Abs(source)
	if err != nil {
		c.logger.Warn("cache: failed to resolve source path", "source", source, "error", err)
		return
	}

	hash, err := HashFile(abs)
	if err != nil {
		c.logger.Warn("cache: failed to hash source", "source", abs, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.openLocked(true)
	if err != nil {
		c.logger.Warn("cache: failed to open table", "error", err)
		return
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		if err != nil {
			return err
		}

		return b.Put([]byte(abs), []byte(hash))
	})
	if err != nil {
		c.logger.Warn("cache: failed to persist entry", "source", abs, "error", err)
	}
}

// Clear removes the persisted table and, if the object directory and cache
// root are then empty, prunes them too. Raises nothing when no cache state
// exists.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.closeLocked(); err != nil {
		c.logger.Warn("cache: failed to close table", "error", err)
	}

	dbPath := filepath.Join(c.root, dbFileName)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache table: %w", err)
	}

	// Prune empty directories; os.Remove refuses non-empty ones.
	_ = os.Remove(filepath.Join(c.root, objsDirName))
	_ = os.Remove(c.root)

	return nil
}

// Stats returns the number of recorded entries and the total size in bytes
// of stored object files.
func (c *Cache) Stats() (int, int64, error) {
	var count int

	c.mu.Lock()
	db, err := c.openLocked(false)
	if err != nil {
		c.mu.Unlock()
		return 0, 0, err
	}

	if db != nil {
		err = db.View(func(tx *bbolt.Tx) error {
			if b := tx.Bucket([]byte(bucketName)); b != nil {
				count = b.Stats().KeyN
			}

			return nil
		})
	}
	c.mu.Unlock()

	if err != nil {
		return 0, 0, err
	}

	var totalSize int64
	objsDir := filepath.Join(c.root, objsDirName)
	_ = filepath.Walk(objsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}

		if !info.IsDir() {
			totalSize += info.Size()
		}

		return nil
	})

	return count, totalSize, nil
}

// lookup reads the recorded hash for an absolute source path. A missing
// table, bucket or key is a miss.
func (c *Cache) lookup(abs string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	db, err := c.openLocked(false)
	if err != nil {
		c.logger.Warn("cache: failed to open table", "error", err)
		return "", false
	}

	if db == nil {
		return "", false
	}

	var hash string
	err = db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		if b == nil {
			return nil
		}

		if data := b.Get([]byte(abs)); data != nil {
			hash = string(data)
		}

		return nil
	})
	if err != nil {
		c.logger.Warn("cache: failed to read entry", "source", abs, "error", err)
		return "", false
	}

	return hash, hash != ""
}

// openLocked returns the table handle, opening it on demand. With create
// false and no table file on disk it returns (nil, nil) so reads can treat
// the cache as empty without creating anything. Callers must hold c.mu.
func (c *Cache) openLocked(create bool) (*bbolt.DB, error) {
	if c.db != nil {
		return c.db, nil
	}

	dbPath := filepath.Join(c.root, dbFileName)

	if !create {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, nil
		}
	} else {
		if err := os.MkdirAll(c.root, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache table: %w", err)
	}

	c.db = db

	return db, nil
}
