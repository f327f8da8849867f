package currency

import (
	"fmt"
	"strings"
)

// MalformedResponseError reports a 2xx provider response whose body could
// not be interpreted as a rate table.
type MalformedResponseError struct {
	Provider string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// MissingRateError reports a currency absent from an otherwise valid table.
// It is the only conversion failure surfaced to callers: totals silently
// computed with a guessed rate would be worse than a visible error.
type MissingRateError struct {
	Currency string
	Base     string
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("missing rate for '%s' (base=%s)", e.Currency, e.Base)
}

// ChainExhaustedError means every provider in the chain failed. It carries
// the per-provider errors; the caller decides the fallback (cache, seed).
type ChainExhaustedError struct {
	Errors []error
}

func (e *ChainExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return "all rate providers failed: " + strings.Join(parts, "; ")
}
