package cache

import (
	"path/filepath"
	"strings"
)

// Disabled is the no-cache stand-in used for --no-cache runs. Objects land
// next to their sources instead of the cache's object store, every source
// is considered stale, and nothing is ever persisted, so the cache root is
// never created or touched.
type Disabled struct{}

// ObjectPath places the object file beside the source.
func (Disabled) ObjectPath(source string) (string, error) {
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(abs)
	return strings.TrimSuffix(abs, ext) + ".o", nil
}

// IsStale always reports true: without a table there is no prior state.
func (Disabled) IsStale(string) bool {
	return true
}

// Record is a no-op.
func (Disabled) Record(string) {}
