package currency

import (
	"encoding/json"
	"math"
	"strings"
)

// providerPayload covers the closed set of known response shapes:
//
//	{"base"|"from": "EUR", "rates": {...}}                  generic table
//	{"result": "success", "base_code": "EUR", "rates": {...}}  success-flag shape
//
// Adding a provider with a new shape means adding a field here and a case to
// the base discriminator in ParseRates.
type providerPayload struct {
	Result   string         `json:"result"`
	Base     string         `json:"base"`
	From     string         `json:"from"`
	BaseCode string         `json:"base_code"`
	Rates    map[string]any `json:"rates"`
}

// ParseRates normalizes one decoded provider response into (base, rates).
// The returned table always carries rates[base] = 1.0 and upper-cased keys;
// non-numeric, non-finite and negative rate values are dropped silently
// since they are not usable rates. A body without a rates object, or whose
// base currency cannot be determined, fails with MalformedResponseError.
func ParseRates(provider string, body []byte) (string, map[string]float64, error) {
	var payload providerPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil, &MalformedResponseError{Provider: provider, Reason: "non-JSON or unexpected payload"}
	}
	if payload.Rates == nil {
		return "", nil, &MalformedResponseError{Provider: provider, Reason: "unexpected API response format: missing 'rates' object"}
	}

	var base string
	switch {
	case payload.Result == "success" && payload.BaseCode != "":
		base = payload.BaseCode
	case payload.Base != "":
		base = payload.Base
	case payload.From != "":
		base = payload.From
	default:
		return "", nil, &MalformedResponseError{Provider: provider, Reason: "cannot determine base currency"}
	}
	base = strings.ToUpper(strings.TrimSpace(base))

	rates := make(map[string]float64, len(payload.Rates)+1)
	for code, raw := range payload.Rates {
		v, ok := raw.(float64)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			continue
		}
		rates[strings.ToUpper(code)] = v
	}
	rates[base] = 1.0
	return base, rates, nil
}
