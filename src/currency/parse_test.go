package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRatesGenericBaseShape(t *testing.T) {
	body := []byte(`{"base":"EUR","rates":{"USD":1.1,"GBP":0.85}}`)
	base, rates, err := ParseRates("test-provider", body)
	require.NoError(t, err)
	assert.Equal(t, "EUR", base)
	assert.Equal(t, 1.1, rates["USD"])
	assert.Equal(t, 0.85, rates["GBP"])
	assert.Equal(t, 1.0, rates["EUR"], "base rate must be injected")
}

func TestParseRatesFromShape(t *testing.T) {
	body := []byte(`{"from":"USD","rates":{"EUR":0.92}}`)
	base, rates, err := ParseRates("test-provider", body)
	require.NoError(t, err)
	assert.Equal(t, "USD", base)
	assert.Equal(t, 1.0, rates["USD"])
	assert.Equal(t, 0.92, rates["EUR"])
}

func TestParseRatesSuccessFlagShape(t *testing.T) {
	body := []byte(`{"result":"success","base_code":"eur","rates":{"usd":1.08}}`)
	base, rates, err := ParseRates("test-provider", body)
	require.NoError(t, err)
	assert.Equal(t, "EUR", base)
	assert.Equal(t, 1.08, rates["USD"], "rate keys must be upper-cased")
	assert.Equal(t, 1.0, rates["EUR"])
}

func TestParseRatesDropsUnusableValues(t *testing.T) {
	body := []byte(`{"base":"EUR","rates":{"USD":1.1,"GBP":"not-a-number","JPY":null,"CHF":-2.0}}`)
	_, rates, err := ParseRates("test-provider", body)
	require.NoError(t, err)
	assert.Contains(t, rates, "USD")
	assert.NotContains(t, rates, "GBP")
	assert.NotContains(t, rates, "JPY")
	assert.NotContains(t, rates, "CHF")
}

func TestParseRatesMissingRatesObject(t *testing.T) {
	_, _, err := ParseRates("test-provider", []byte(`{"base":"EUR"}`))
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "test-provider", malformed.Provider)
}

func TestParseRatesUndeterminableBase(t *testing.T) {
	_, _, err := ParseRates("test-provider", []byte(`{"rates":{"USD":1.1}}`))
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestParseRatesNonJSONBody(t *testing.T) {
	_, _, err := ParseRates("test-provider", []byte(`<html>rate limited</html>`))
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

func TestParseRatesBaseOverridesUpstreamValue(t *testing.T) {
	// Upstream declares its own base at a non-1.0 value; the adapter pins it.
	body := []byte(`{"base":"EUR","rates":{"EUR":0.999,"USD":1.1}}`)
	_, rates, err := ParseRates("test-provider", body)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rates["EUR"])
}
