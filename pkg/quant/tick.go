package quant

import "math"

// TickSize returns the price increment used to lay out neighbouring
// order-book levels around price. Caller guarantees price > 0.
func TickSize(price float64) float64 {
	switch {
	case price < 1:
		return 0.0001
	case price < 10:
		return 0.001
	case price < 100:
		return 0.01
	case price < 1_000:
		return 1
	case price < 10_000:
		return 5
	case price < 100_000:
		return 10
	case price < 1_000_000:
		return 100
	default:
		return 1_000
	}
}

// TickDecimals returns the number of fractional digits a tick carries.
// E.g., 0.001 -> 3, 5 -> 0.
func TickDecimals(tick float64) int32 {
	d := int32(0)
	for d < 8 && math.Abs(tick-math.Round(tick)) > 1e-9 {
		tick *= 10
		d++
	}
	return d
}

// MatchTolerance is the maximum distance between a synthesized level and a
// real book entry for the two to be treated as the same price.
func MatchTolerance(tick float64) float64 {
	return math.Max(tick*0.1, 0.0001)
}
