package currency

import "strings"

// Cross-rate math over one already-resolved shared table. Both functions
// are pure and total over well-formed tables; they never perform I/O and
// never propagate NaN or a division panic into display code.

// Factor returns the multiplier that converts from -> to within the shared
// table: rates[to] / rates[from]. When either side is missing or the from
// rate is zero it degrades to 1.0 rather than crashing a rendered total.
func Factor(rates map[string]float64, from, to string) float64 {
	rFrom, okFrom := rates[normalizeCode(from)]
	rTo, okTo := rates[normalizeCode(to)]
	if okFrom && okTo && rFrom != 0 {
		return rTo / rFrom
	}
	return 1.0
}

// ToBase converts amount from cur into base using the shared table:
// amount * (rates[base] / rates[cur]). The second return is false when the
// table has no usable rate for cur; cur == base succeeds unchanged even
// with an incomplete table.
func ToBase(rates map[string]float64, base string, amount float64, cur string) (float64, bool) {
	base = normalizeCode(base)
	cur = strings.ToUpper(strings.TrimSpace(cur))
	if cur == "" {
		cur = base
	}
	rBase, ok := rates[base]
	if !ok {
		rBase = 1.0
	}
	if rCur, ok := rates[cur]; ok && rCur != 0 {
		return amount * (rBase / rCur), true
	}
	if cur == base {
		return amount, true
	}
	return 0, false
}
