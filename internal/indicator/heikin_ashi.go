package indicator

import (
	"math"

	"pickcoin_go/internal/domain"
)

// HeikinAshi transforms candles with the HA recurrence:
// close = (o+h+l+c)/4, open = (prevOpen+prevClose)/2 (first: (o+c)/2),
// high/low extended to cover the HA body. Volume is carried over.
func HeikinAshi(data []domain.Candle) []domain.Candle {
	out := make([]domain.Candle, len(data))
	for i, c := range data {
		haClose := (c.Open + c.High + c.Low + c.Close) / 4
		haOpen := (c.Open + c.Close) / 2
		if i > 0 {
			haOpen = (out[i-1].Open + out[i-1].Close) / 2
		}
		out[i] = domain.Candle{
			Time:   c.Time,
			Open:   haOpen,
			High:   math.Max(c.High, math.Max(haOpen, haClose)),
			Low:    math.Min(c.Low, math.Min(haOpen, haClose)),
			Close:  haClose,
			Volume: c.Volume,
		}
	}
	return out
}
