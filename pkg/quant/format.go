package quant

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a price with magnitude-dependent precision.
// Non-finite or non-positive prices render as "".
func FormatPrice(price float64) string {
	if !isFinite(price) || price <= 0 {
		return ""
	}

	d := decimal.NewFromFloat(price)
	switch {
	case price < 10:
		return d.StringFixed(4)
	case price < 100:
		return d.StringFixed(2)
	case price < 10_000:
		return groupThousands(d.Round(0).StringFixed(0))
	case price < 1_000_000:
		return groupThousands(d.Round(-1).StringFixed(0))
	default:
		return groupThousands(d.Round(-3).StringFixed(0))
	}
}

// FormatQuantity renders an order size. Precision follows the magnitude of
// referencePrice, not of the quantity itself.
func FormatQuantity(quantity, referencePrice float64) string {
	if !isFinite(quantity) || quantity < 0 {
		return ""
	}
	return groupThousands(decimal.NewFromFloat(quantity).StringFixed(QuantityDecimals(referencePrice)))
}

// QuantityDecimals returns the fractional digits shown for quantities at
// the given reference price.
func QuantityDecimals(referencePrice float64) int32 {
	switch {
	case referencePrice < 1:
		return 4
	case referencePrice < 10:
		return 3
	case referencePrice < 100:
		return 2
	case referencePrice < 1_000:
		return 1
	default:
		return 2
	}
}

// groupThousands inserts "," separators into the integer part of a plain
// decimal string ("-1234567.89" -> "-1,234,567.89").
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac := s, ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, frac = s[:dot], s[dot:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}

	var b strings.Builder
	b.Grow(len(intPart) + len(intPart)/3 + len(frac) + 1)
	b.WriteString(sign)
	head := len(intPart) % 3
	if head > 0 {
		b.WriteString(intPart[:head])
	}
	for i := head; i < len(intPart); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
