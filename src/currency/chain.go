package currency

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/username/fintrack/backend/src/logger"
	"golang.org/x/net/publicsuffix"
)

// Provider describes one external rate source: a name for error reporting
// and how to build its request URL for a preferred base currency.
type Provider struct {
	Name     string
	BuildURL func(base string) string
}

// DefaultProviders returns the sources tried in order. All of them answer
// without API keys; they differ in how the base currency is passed.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name: "api.exchangerate.host",
			BuildURL: func(base string) string {
				return "https://api.exchangerate.host/latest?base=" + url.QueryEscape(base)
			},
		},
		{
			Name: "api.frankfurter.app",
			BuildURL: func(base string) string {
				// frankfurter uses 'from' instead of 'base'
				return "https://api.frankfurter.app/latest?from=" + url.QueryEscape(base)
			},
		},
		{
			Name: "open.er-api.com",
			BuildURL: func(base string) string {
				// path-embedded base
				return "https://open.er-api.com/v6/latest/" + url.PathEscape(base)
			},
		},
	}
}

// Resolution is the outcome of one successful pass over the provider chain.
type Resolution struct {
	Base  string
	Rates map[string]float64
	// Failures lists the providers tried and skipped before the one that
	// answered.
	Failures []error
}

// Chain tries each provider in order and returns the first usable table,
// so latency is bounded by the first healthy provider, not the slowest.
type Chain struct {
	providers []Provider
	client    *http.Client
}

func NewChain(providers []Provider) *Chain {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil && logger.L != nil {
		logger.L.Error("Failed to create cookie jar for rate providers", "error", err)
	}
	return &Chain{
		providers: providers,
		client: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve fetches a rate table for preferredBase. A provider failure
// (network error, non-2xx status, malformed body) moves on to the next
// provider; each provider is attempted at most once per call. When every
// provider fails the error is a *ChainExhaustedError carrying the
// accumulated per-provider errors, and the caller decides the fallback.
func (c *Chain) Resolve(preferredBase string) (*Resolution, error) {
	var failures []error
	for _, p := range c.providers {
		base, rates, err := c.fetchOne(p, preferredBase)
		if err != nil {
			if logger.L != nil {
				logger.L.Warn("Rate provider failed, trying next", "provider", p.Name, "error", err)
			}
			failures = append(failures, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		return &Resolution{Base: base, Rates: rates, Failures: failures}, nil
	}
	return nil, &ChainExhaustedError{Errors: failures}
}

func (c *Chain) fetchOne(p Provider, preferredBase string) (string, map[string]float64, error) {
	resp, err := c.client.Get(p.BuildURL(preferredBase))
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("reading response body: %w", err)
	}
	return ParseRates(p.Name, body)
}
