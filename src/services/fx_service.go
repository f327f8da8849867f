package services

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/fintrack/backend/src/currency"
)

const sharedRatesKey = "shared_rates"

// FXService memoizes the shared rate table in-process so one resolution
// serves the summary panel, transaction writes and import backfills for a
// while, on top of the converter's own disk-level staleness tiers.
type FXService struct {
	converter *currency.Converter
	memo      *cache.Cache
}

func NewFXService(converter *currency.Converter) *FXService {
	return &FXService{
		converter: converter,
		memo:      cache.New(10*time.Minute, 30*time.Minute),
	}
}

// SharedRates returns the memoized table, resolving a new one when the memo
// expired.
func (s *FXService) SharedRates() currency.RateTable {
	if v, ok := s.memo.Get(sharedRatesKey); ok {
		if table, ok := v.(currency.RateTable); ok {
			return table
		}
	}
	table := s.converter.FetchRates()
	s.memo.Set(sharedRatesKey, table, cache.DefaultExpiration)
	return table
}

// Converter exposes the underlying resolver for direct conversions, which
// must not be memoized: a MissingRate failure should retry the live path.
func (s *FXService) Converter() *currency.Converter {
	return s.converter
}

// NormalizeToEUR converts amount into EUR with the shared table, returning
// nil when no usable rate exists for the currency. Callers persist NULL and
// rely on a later backfill pass.
func (s *FXService) NormalizeToEUR(amount float64, currencyCode string) *float64 {
	table := s.SharedRates()
	if v, ok := currency.ToBase(table.Rates, "EUR", amount, currencyCode); ok {
		return &v
	}
	return nil
}
