package currency

// SeedBase is the base of the built-in emergency table.
const SeedBase = "EUR"

// SeedTable returns a fresh copy of the small built-in rate table used when
// every provider fails and no cached table exists. It is the unconditional
// floor that keeps FetchRates total. Extend it if you need more currencies
// covered offline.
func SeedTable() map[string]float64 {
	return map[string]float64{
		"EUR": 1.0,
		"USD": 1.08,
		"GBP": 0.85,
		"INR": 90.0,
		"AUD": 1.60,
		"CAD": 1.47,
		"JPY": 160.0,
		"CNY": 7.8,
	}
}
