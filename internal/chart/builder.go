package chart

import (
	"math"

	"pickcoin_go/internal/domain"
)

// Builder aggregates ticker prices into fixed-interval candles.
// Not safe for concurrent use; Source owns one per symbol.
type Builder struct {
	interval  int64
	current   domain.Candle
	started   bool
	lastValue float64
}

// NewBuilder creates a builder for intervalSec bars.
func NewBuilder(intervalSec int) *Builder {
	if intervalSec <= 0 {
		intervalSec = 60
	}
	return &Builder{interval: int64(intervalSec)}
}

// Seed continues from an existing bar, e.g. the newest cached one.
func (b *Builder) Seed(c domain.Candle) {
	b.current = c
	b.started = true
}

// Apply folds one ticker into the series. When the ticker opens a new bar
// the finished bar is returned with closed == true.
func (b *Builder) Apply(t domain.TickerUpdate) (finished domain.Candle, closed bool) {
	price := t.ClosePrice
	if !(price > 0) || math.IsInf(price, 0) {
		return domain.Candle{}, false
	}

	sec := t.Timestamp / 1000
	open := sec - sec%b.interval

	// Volume is the growth of the cumulative 24h traded value, in coins.
	var vol float64
	if b.lastValue > 0 && t.Value > b.lastValue {
		vol = (t.Value - b.lastValue) / price
	}
	if t.Value > 0 {
		b.lastValue = t.Value
	}

	switch {
	case !b.started:
		b.current = domain.Candle{Time: open, Open: price, High: price, Low: price, Close: price, Volume: vol}
		b.started = true
	case open > b.current.Time:
		finished, closed = b.current, true
		b.current = domain.Candle{Time: open, Open: finished.Close, High: price, Low: price, Close: price, Volume: vol}
		b.current.High = math.Max(b.current.High, b.current.Open)
		b.current.Low = math.Min(b.current.Low, b.current.Open)
	case open < b.current.Time:
		// Late tick for an already closed bar.
		return domain.Candle{}, false
	default:
		b.current.High = math.Max(b.current.High, price)
		b.current.Low = math.Min(b.current.Low, price)
		b.current.Close = price
		b.current.Volume += vol
	}
	return finished, closed
}

// Current returns the open bar.
func (b *Builder) Current() (domain.Candle, bool) {
	return b.current, b.started
}
