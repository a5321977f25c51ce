// Package indicator computes chart overlays over ascending OHLCV candles.
// Every function is pure: identical input yields identical output, and a
// series too short for a window yields an empty or partial result.
package indicator

// Point is one value of a single-line series.
type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

// MACDPoint is one sample of the MACD line, its signal and histogram.
type MACDPoint struct {
	Time      int64   `json:"time"`
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BandPoint is one Bollinger sample.
type BandPoint struct {
	Time   int64   `json:"time"`
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// StochPoint is one stochastic oscillator sample.
type StochPoint struct {
	Time int64   `json:"time"`
	K    float64 `json:"k"`
	D    float64 `json:"d"`
}
