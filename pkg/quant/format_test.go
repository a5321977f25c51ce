package quant

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0.00012345, "0.0001"},
		{0.5, "0.5000"},
		{5.12345, "5.1235"},
		{12.345, "12.35"},
		{123.4, "123"},
		{1234.5, "1,235"},
		{12345, "12,350"},
		{123456, "123,460"},
		{98765432, "98,765,000"},
	}

	for _, tt := range tests {
		got := FormatPrice(tt.input)
		if got != tt.expected {
			t.Errorf("FormatPrice(%v) = %q; want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatPrice_InvalidInput(t *testing.T) {
	for _, p := range []float64{0, -1, -0.0001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := FormatPrice(p); got != "" {
			t.Errorf("FormatPrice(%v) = %q; want empty", p, got)
		}
	}
}

func TestFormatPrice_Granularity(t *testing.T) {
	tests := []struct {
		lo, hi      float64
		granularity float64
	}{
		{100, 10_000, 1},
		{10_000, 100_000, 10},
		{100_000, 1_000_000, 10},
		{1_000_000, 100_000_000, 1_000},
	}

	for _, tt := range tests {
		for i := 0; i < 50; i++ {
			price := tt.lo + (tt.hi-tt.lo)*float64(i)/50 + 0.37
			got := FormatPrice(price)
			v, err := strconv.ParseFloat(strings.ReplaceAll(got, ",", ""), 64)
			if err != nil {
				t.Fatalf("FormatPrice(%v) = %q is not numeric", price, got)
			}
			if math.Mod(v, tt.granularity) != 0 {
				t.Errorf("FormatPrice(%v) = %q; not a multiple of %v", price, got, tt.granularity)
			}
			if math.Abs(v-price) > tt.granularity/2+1e-9 {
				t.Errorf("FormatPrice(%v) = %q; off by more than half a step", price, got)
			}
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		qty, ref float64
		expected string
	}{
		{5.6789, 0.5, "5.6789"},
		{5.6789, 5, "5.679"},
		{5.6789, 50, "5.68"},
		{5.6789, 500, "5.7"},
		{1234.5678, 50_000_000, "1,234.57"},
		{0, 100, "0.0"},
	}

	for _, tt := range tests {
		got := FormatQuantity(tt.qty, tt.ref)
		if got != tt.expected {
			t.Errorf("FormatQuantity(%v, %v) = %q; want %q", tt.qty, tt.ref, got, tt.expected)
		}
	}

	if got := FormatQuantity(-1, 100); got != "" {
		t.Errorf("negative quantity should format empty, got %q", got)
	}
}

func TestGroupThousands(t *testing.T) {
	tests := map[string]string{
		"0":           "0",
		"999":         "999",
		"1000":        "1,000",
		"123456.78":   "123,456.78",
		"-1234567":    "-1,234,567",
		"100000000.1": "100,000,000.1",
	}
	for in, want := range tests {
		if got := groupThousands(in); got != want {
			t.Errorf("groupThousands(%q) = %q; want %q", in, got, want)
		}
	}
}
