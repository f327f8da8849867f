package currency

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticProvider(name string, srv *httptest.Server) Provider {
	return Provider{
		Name:     name,
		BuildURL: func(base string) string { return srv.URL + "?base=" + base },
	}
}

func TestChainFirstHealthyProviderWins(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()
	rateLimited := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer rateLimited.Close()
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"EUR","rates":{"EUR":1.0,"USD":1.1}}`))
	}))
	defer healthy.Close()

	chain := NewChain([]Provider{
		staticProvider("a", failing),
		staticProvider("b", rateLimited),
		staticProvider("c", healthy),
	})

	res, err := chain.Resolve("EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", res.Base)
	assert.Equal(t, map[string]float64{"EUR": 1.0, "USD": 1.1}, res.Rates)
	assert.Len(t, res.Failures, 2, "both failed providers must be recorded")
}

func TestChainShortCircuitsOnFirstSuccess(t *testing.T) {
	calls := 0
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"EUR","rates":{"USD":1.1}}`))
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.9}}`))
	}))
	defer second.Close()

	chain := NewChain([]Provider{staticProvider("a", first), staticProvider("b", second)})
	res, err := chain.Resolve("EUR")
	require.NoError(t, err)
	assert.Equal(t, "EUR", res.Base)
	assert.Empty(t, res.Failures)
	assert.Zero(t, calls, "later providers must not be contacted after a success")
}

func TestChainExhausted(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()
	malformed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"no":"rates here"}`))
	}))
	defer malformed.Close()

	chain := NewChain([]Provider{staticProvider("a", failing), staticProvider("b", malformed)})
	res, err := chain.Resolve("EUR")
	assert.Nil(t, res)

	var exhausted *ChainExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Len(t, exhausted.Errors, 2)
}

func TestDefaultProvidersEmbedBase(t *testing.T) {
	providers := DefaultProviders()
	require.Len(t, providers, 3)
	assert.Contains(t, providers[0].BuildURL("EUR"), "base=EUR")
	assert.Contains(t, providers[1].BuildURL("EUR"), "from=EUR")
	assert.Contains(t, providers[2].BuildURL("EUR"), "/latest/EUR")
}
