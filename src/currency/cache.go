package currency

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/username/fintrack/backend/src/logger"
)

// CacheEntry is the single persisted rate-table slot: the last successfully
// resolved table, whatever its base.
type CacheEntry struct {
	TS    int64              `json:"ts"` // unix seconds at resolution time
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Age returns how old the entry is at instant now.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(time.Unix(e.TS, 0))
}

// IsFresh reports whether the entry is younger than ttl at instant now.
func IsFresh(entry *CacheEntry, ttl time.Duration, now time.Time) bool {
	return entry != nil && entry.Age(now) < ttl
}

// cacheStore abstracts where the slot is persisted so tests can use memory.
type cacheStore interface {
	Load() (*CacheEntry, bool)
	Save(*CacheEntry)
}

// DiskCache persists the entry as one JSON document. The cache is a
// performance optimization, not a correctness-bearing store, so every
// failure mode is non-fatal: an absent, unreadable or malformed file reads
// as "no cache" and write errors are logged and swallowed.
type DiskCache struct {
	Path string
}

func (c *DiskCache) Load() (*CacheEntry, bool) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, false
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Rates == nil || entry.Base == "" {
		if logger.L != nil {
			logger.L.Warn("Discarding unreadable rate cache file", "path", c.Path, "error", err)
		}
		return nil, false
	}
	return &entry, true
}

func (c *DiskCache) Save(entry *CacheEntry) {
	var err error
	if dir := filepath.Dir(c.Path); dir != "." && dir != "" {
		err = os.MkdirAll(dir, 0o755)
	}
	if err == nil {
		var data []byte
		if data, err = json.Marshal(entry); err == nil {
			err = os.WriteFile(c.Path, data, 0o644)
		}
	}
	if err != nil && logger.L != nil {
		logger.L.Warn("Failed to persist rate cache", "path", c.Path, "error", err)
	}
}
