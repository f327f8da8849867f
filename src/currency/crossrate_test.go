package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleRates() map[string]float64 {
	return map[string]float64{
		"EUR": 1.0,
		"USD": 1.08,
		"GBP": 0.85,
		"JPY": 160.0,
	}
}

func TestFactorIdentity(t *testing.T) {
	rates := sampleRates()
	for code := range rates {
		assert.Equal(t, 1.0, Factor(rates, code, code), "factor(%s, %s)", code, code)
	}
}

func TestFactorReciprocal(t *testing.T) {
	rates := sampleRates()
	codes := []string{"EUR", "USD", "GBP", "JPY"}
	for _, a := range codes {
		for _, b := range codes {
			assert.InDelta(t, 1.0, Factor(rates, a, b)*Factor(rates, b, a), 1e-9, "factor(%s,%s)*factor(%s,%s)", a, b, b, a)
		}
	}
}

func TestFactorDefensiveDefault(t *testing.T) {
	rates := sampleRates()
	assert.Equal(t, 1.0, Factor(rates, "EUR", "XXX"), "missing target degrades to 1.0")
	assert.Equal(t, 1.0, Factor(rates, "XXX", "EUR"), "missing source degrades to 1.0")
	assert.Equal(t, 1.0, Factor(map[string]float64{"EUR": 0, "USD": 1.08}, "EUR", "USD"), "zero source rate degrades to 1.0")
	assert.Equal(t, 1.0, Factor(nil, "EUR", "USD"))
}

func TestFactorIsCaseInsensitive(t *testing.T) {
	rates := sampleRates()
	assert.Equal(t, Factor(rates, "EUR", "USD"), Factor(rates, "eur", "usd"))
}

func TestToBaseHappyPath(t *testing.T) {
	rates := sampleRates()
	got, ok := ToBase(rates, "EUR", 108, "USD")
	assert.True(t, ok)
	assert.InDelta(t, 100.0, got, 1e-9)
}

func TestToBaseUnknownCurrencyUnavailable(t *testing.T) {
	_, ok := ToBase(sampleRates(), "EUR", 10, "XXX")
	assert.False(t, ok)
}

func TestToBaseSameCurrencyWithIncompleteTable(t *testing.T) {
	// Even an empty table converts base -> base unchanged.
	got, ok := ToBase(map[string]float64{}, "EUR", 33.0, "EUR")
	assert.True(t, ok)
	assert.Equal(t, 33.0, got)
}

func TestToBaseZeroRateUnavailable(t *testing.T) {
	_, ok := ToBase(map[string]float64{"EUR": 1.0, "USD": 0}, "EUR", 10, "USD")
	assert.False(t, ok)
}

func TestSeedTableInvariants(t *testing.T) {
	seed := SeedTable()
	assert.Equal(t, 1.0, seed[SeedBase])
	for code, rate := range seed {
		assert.Len(t, code, 3)
		assert.GreaterOrEqual(t, rate, 0.0)
	}
	// Each call hands out a fresh copy; mutating one must not leak.
	seed["USD"] = 999
	assert.NotEqual(t, 999.0, SeedTable()["USD"])
}
