package mapgen

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path"

	"github.com/holtvik/ansuz/internal/storage"
)

// CacheFile holds the incremental summary cache, keyed "source:path".
const CacheFile = "map_cache.json"

// cache maps a record's ref string to the last computed summary.
type cache map[string]string

// loadCache reads the cache file. A missing or malformed cache is treated as
// empty so a build can always proceed.
func loadCache(store storage.Provider, logger *slog.Logger) cache {
	data, err := store.Read(path.Join(OutputDir, CacheFile))
	if err != nil {
		return cache{}
	}
	var c cache
	if err := json.Unmarshal(data, &c); err != nil {
		logger.Warn("mapgen: discarding malformed cache", slog.String("error", err.Error()))
		return cache{}
	}
	return c
}

// save rewrites the full cache atomically.
func (c cache) save(store storage.Provider) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("mapgen: encode cache: %w", err)
	}
	if err := store.Write(path.Join(OutputDir, CacheFile), append(data, '\n')); err != nil {
		return fmt.Errorf("mapgen: write cache: %w", err)
	}
	return nil
}
