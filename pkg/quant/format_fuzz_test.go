package quant

import (
	"testing"
)

// FuzzFormatPrice checks formatting never panics and rejects invalid prices.
func FuzzFormatPrice(f *testing.F) {
	f.Add(0.0)
	f.Add(0.00012345)
	f.Add(123456.0)
	f.Add(-1.23)
	f.Add(95000000.0)

	f.Fuzz(func(t *testing.T, val float64) {
		got := FormatPrice(val)
		if val <= 0 && got != "" {
			t.Errorf("FormatPrice(%v) = %q; want empty", val, got)
		}
	})
}

// FuzzFormatQuantity tests quantity formatting with fuzzing.
func FuzzFormatQuantity(f *testing.F) {
	f.Add(5.6789, 0.5)
	f.Add(0.0, 100.0)
	f.Add(21000000.0, 95000000.0)

	f.Fuzz(func(t *testing.T, qty, ref float64) {
		_ = FormatQuantity(qty, ref)
	})
}
