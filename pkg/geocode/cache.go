package geocode

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Entry sources. Manual entries are hand-edited into the cache file and are
// never overwritten by automated lookups.
const (
	SourceAPI    = "api"
	SourceManual = "manual"
)

// ErrCorruptCache marks a cache file that exists but cannot be parsed.
// Callers must not treat it as an empty cache: silently starting fresh
// would discard accumulated manual corrections.
var ErrCorruptCache = errors.New("geocode cache file is corrupt")

// Entry is one cached geocode outcome. Nil coordinates record a lookup that
// found nothing, so the address is not re-queried on later runs.
type Entry struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Source    string   `json:"source"`
}

// Resolved reports whether the entry carries coordinates.
func (e Entry) Resolved() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// Cache is the persistent address-key -> coordinates mapping shared across
// pipeline runs. It is loaded wholesale at the start of a run and flushed
// back to its file as lookups complete. The file is pretty-printed JSON so
// humans can add manual override entries.
type Cache struct {
	path    string
	entries map[string]Entry
	dirty   bool
}

// LoadCache reads the cache file at path. A missing file is a fresh, empty
// cache; an unparseable file fails with ErrCorruptCache.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read cache")
	}

	if err := json.Unmarshal(data, &c.entries); err != nil {
		return nil, eris.Wrapf(ErrCorruptCache, "geocode: parse %s: %v", path, err)
	}

	zap.L().Debug("geocode cache loaded",
		zap.String("path", path),
		zap.Int("entries", len(c.entries)),
	)
	return c, nil
}

// Lookup returns the entry for key, if present.
func (c *Cache) Lookup(key string) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Store records an API lookup outcome for key. An existing manual entry is
// left untouched; manual overrides persist until a human edits the file.
func (c *Cache) Store(key string, e Entry) {
	if existing, ok := c.entries[key]; ok && existing.Source == SourceManual {
		zap.L().Debug("geocode cache: keeping manual entry", zap.String("key", key))
		return
	}
	if e.Source == "" {
		e.Source = SourceAPI
	}
	c.entries[key] = e
	c.dirty = true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int { return len(c.entries) }

// Path returns the file the cache persists to.
func (c *Cache) Path() string { return c.path }

// Flush writes the cache back to its file if anything changed since the
// last flush. Called after every cache-miss lookup so an interrupted run
// keeps the entries it already resolved.
func (c *Cache) Flush() error {
	if !c.dirty {
		return nil
	}

	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "geocode: marshal cache")
	}
	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrap(err, "geocode: create cache dir")
		}
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return eris.Wrap(err, "geocode: write cache")
	}

	c.dirty = false
	return nil
}
