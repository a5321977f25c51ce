// Package chart turns ticker streams into candles, fills missing history
// with a deterministic random walk and computes indicator overlays.
package chart

import (
	"math"
	"math/rand"

	"pickcoin_go/internal/domain"
)

// WalkParams shapes a synthetic series.
type WalkParams struct {
	Seed        int64
	Count       int
	IntervalSec int
	EndTime     int64   // open time of the last bar, Unix seconds
	LastClose   float64 // the series ends near this price
	Volatility  float64 // per-bar stddev of log returns; 0 means 0.004
}

// Synthesize builds Count ascending candles ending at EndTime. The same
// params always yield the same series. The walk runs backwards from
// LastClose so the newest bar lines up with the live price.
func Synthesize(p WalkParams) []domain.Candle {
	if p.Count <= 0 || p.IntervalSec <= 0 || !(p.LastClose > 0) {
		return nil
	}
	vol := p.Volatility
	if vol <= 0 {
		vol = 0.004
	}

	rnd := rand.New(rand.NewSource(p.Seed))
	out := make([]domain.Candle, p.Count)

	closePrice := p.LastClose
	for i := p.Count - 1; i >= 0; i-- {
		ret := rnd.NormFloat64() * vol
		openPrice := closePrice / math.Exp(ret)

		hi := math.Max(openPrice, closePrice) * (1 + math.Abs(rnd.NormFloat64())*vol/2)
		lo := math.Min(openPrice, closePrice) * (1 - math.Abs(rnd.NormFloat64())*vol/2)

		out[i] = domain.Candle{
			Time:   p.EndTime - int64(p.Count-1-i)*int64(p.IntervalSec),
			Open:   openPrice,
			High:   hi,
			Low:    lo,
			Close:  closePrice,
			Volume: math.Round((0.5+rnd.Float64())*1e4) / 1e4,
		}
		closePrice = openPrice
	}
	return out
}
