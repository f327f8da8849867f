package currency

import (
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/logger"
)

// staleMultiplier bounds the "moderately stale" tier: a cached table older
// than ttl but younger than ttl*staleMultiplier may still be served when
// every provider is down. Stale data beats no data for display-only totals.
const staleMultiplier = 12

// RateTable is an immutable snapshot of exchange rates against Base. Every
// resolution produces a new value; callers must treat Rates as read-only.
type RateTable struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// rateSource is what the Converter needs from the provider chain.
type rateSource interface {
	Resolve(preferredBase string) (*Resolution, error)
}

// Converter answers "give me a usable rate table now". The fallback order
// is fixed: fresh cache, then the provider chain, then the stale cache,
// then the built-in seed, so FetchRates never fails.
//
// The cached slot is shared mutable state across requests with no locking;
// concurrent resolutions race read-then-write and last writer wins. That is
// acceptable because every path has a deterministic fallback and the cache
// only saves latency, never correctness.
type Converter struct {
	ttl           time.Duration
	preferredBase string
	source        rateSource
	store         cacheStore
	now           func() time.Time

	// last holds the most recently resolved table, including in-memory
	// fallbacks (stale cache, seed) that were never persisted.
	last *CacheEntry
}

// NewConverter builds a Converter over the default provider chain and a
// disk cache at cachePath. preferredBase may be empty; providers are then
// asked for the seed base.
func NewConverter(ttl time.Duration, cachePath, preferredBase string) *Converter {
	return newConverter(ttl, NewChain(DefaultProviders()), &DiskCache{Path: cachePath}, preferredBase, time.Now)
}

func newConverter(ttl time.Duration, source rateSource, store cacheStore, preferredBase string, now func() time.Time) *Converter {
	c := &Converter{
		ttl:           ttl,
		preferredBase: strings.ToUpper(strings.TrimSpace(preferredBase)),
		source:        source,
		store:         store,
		now:           now,
	}
	if entry, ok := store.Load(); ok {
		c.last = entry
	}
	return c
}

// FetchRates returns the current shared rate table, applying the staleness
// policy in order: a fresh cached table is served without any network call;
// a moderately stale one triggers a refresh but is served as-is when the
// whole chain is down; beyond that the chain result, any cached table
// regardless of age, and finally the built-in seed.
func (c *Converter) FetchRates() RateTable {
	now := c.now()

	if IsFresh(c.last, c.ttl, now) {
		return c.tableFrom(c.last)
	}

	if c.last != nil && c.last.Age(now) < c.ttl*staleMultiplier {
		res, err := c.source.Resolve(c.requestBase())
		if err != nil {
			if logger.L != nil {
				logger.L.Warn("Rate refresh failed, serving stale cached table", "age", c.last.Age(now).String(), "error", err)
			}
			return c.tableFrom(c.last)
		}
		return c.tableFrom(c.persist(res))
	}

	res, err := c.source.Resolve(c.requestBase())
	if err == nil {
		return c.tableFrom(c.persist(res))
	}
	if c.last != nil {
		if logger.L != nil {
			logger.L.Warn("All rate providers failed, serving cached table regardless of age", "error", err)
		}
		return c.tableFrom(c.last)
	}
	if logger.L != nil {
		logger.L.Warn("All rate providers failed with no cached table, serving built-in seed", "error", err)
	}
	seed := &CacheEntry{TS: now.Unix(), Base: SeedBase, Rates: SeedTable()}
	c.last = seed // in-memory only; a restart retries the providers
	return c.tableFrom(seed)
}

// Base returns the base currency of the last resolved table, resolving one
// first if nothing has been resolved yet.
func (c *Converter) Base() string {
	if c.last != nil && c.last.Base != "" {
		return c.last.Base
	}
	return c.FetchRates().Base
}

// Convert converts amount between two currencies via the shared table.
// Identical currencies short-circuit to amount unchanged regardless of
// table state. A currency absent from the table surfaces as
// *MissingRateError, the only conversion failure callers ever see.
func (c *Converter) Convert(amount float64, from, to string) (float64, error) {
	from = normalizeCode(from)
	to = normalizeCode(to)
	if from == to {
		return amount, nil
	}
	return convertIn(c.FetchRates(), amount, from, to)
}

// ConvertWith is Convert against an explicit, already-resolved table.
// Errors name that table's base, not the converter's.
func (c *Converter) ConvertWith(table RateTable, amount float64, from, to string) (float64, error) {
	from = normalizeCode(from)
	to = normalizeCode(to)
	if from == to {
		return amount, nil
	}
	return convertIn(table, amount, from, to)
}

func convertIn(table RateTable, amount float64, from, to string) (float64, error) {
	rFrom, ok := table.Rates[from]
	if !ok {
		return 0, &MissingRateError{Currency: from, Base: table.Base}
	}
	rTo, ok := table.Rates[to]
	if !ok {
		return 0, &MissingRateError{Currency: to, Base: table.Base}
	}
	return amount * (rTo / rFrom), nil
}

func (c *Converter) persist(res *Resolution) *CacheEntry {
	entry := &CacheEntry{TS: c.now().Unix(), Base: res.Base, Rates: res.Rates}
	c.last = entry
	c.store.Save(entry)
	return entry
}

func (c *Converter) requestBase() string {
	if c.preferredBase != "" {
		return c.preferredBase
	}
	return SeedBase
}

func (c *Converter) tableFrom(entry *CacheEntry) RateTable {
	return RateTable{Base: entry.Base, Rates: entry.Rates, FetchedAt: time.Unix(entry.TS, 0)}
}

// normalizeCode upper-cases and trims a currency code, defaulting blanks to
// USD the way the original write paths did.
func normalizeCode(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD"
	}
	return code
}
