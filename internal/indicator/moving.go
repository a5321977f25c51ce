package indicator

import (
	"math"

	"pickcoin_go/internal/domain"
)

// SMA is the simple moving average of closes, emitted from index period-1.
func SMA(data []domain.Candle, period int) []Point {
	if period <= 0 || len(data) < period {
		return nil
	}

	out := make([]Point, 0, len(data)-period+1)
	sum := 0.0
	for i, c := range data {
		sum += c.Close
		if i >= period {
			sum -= data[i-period].Close
		}
		if i >= period-1 {
			out = append(out, Point{Time: c.Time, Value: sum / float64(period)})
		}
	}
	return out
}

// EMA is the exponential moving average of closes seeded with the first
// close, k = 2/(period+1). One point per candle.
func EMA(data []domain.Candle, period int) []Point {
	if period <= 0 || len(data) == 0 {
		return nil
	}

	values := emaOf(closes(data), period)
	out := make([]Point, len(data))
	for i, c := range data {
		out[i] = Point{Time: c.Time, Value: values[i]}
	}
	return out
}

// MACD returns EMA(fast)-EMA(slow), its EMA(signal) and the difference.
func MACD(data []domain.Candle, fast, slow, signal int) []MACDPoint {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(data) == 0 {
		return nil
	}

	c := closes(data)
	fastEMA := emaOf(c, fast)
	slowEMA := emaOf(c, slow)

	line := make([]float64, len(c))
	for i := range c {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig := emaOf(line, signal)

	out := make([]MACDPoint, len(data))
	for i, candle := range data {
		out[i] = MACDPoint{
			Time:      candle.Time,
			MACD:      line[i],
			Signal:    sig[i],
			Histogram: line[i] - sig[i],
		}
	}
	return out
}

// Bollinger returns SMA(period) +/- mult * population stddev of the window.
func Bollinger(data []domain.Candle, period int, mult float64) []BandPoint {
	if period <= 0 || len(data) < period {
		return nil
	}

	out := make([]BandPoint, 0, len(data)-period+1)
	for i := period - 1; i < len(data); i++ {
		window := data[i-period+1 : i+1]

		mean := 0.0
		for _, c := range window {
			mean += c.Close
		}
		mean /= float64(period)

		variance := 0.0
		for _, c := range window {
			d := c.Close - mean
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))

		out = append(out, BandPoint{
			Time:   data[i].Time,
			Upper:  mean + mult*sd,
			Middle: mean,
			Lower:  mean - mult*sd,
		})
	}
	return out
}

// VWAP is the cumulative volume-weighted typical price.
// Until any volume has traded the typical price itself is emitted.
func VWAP(data []domain.Candle) []Point {
	out := make([]Point, 0, len(data))
	var pv, vol float64
	for _, c := range data {
		tp := c.TypicalPrice()
		pv += tp * c.Volume
		vol += c.Volume
		v := tp
		if vol > 0 {
			v = pv / vol
		}
		out = append(out, Point{Time: c.Time, Value: v})
	}
	return out
}

func emaOf(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	k := 2 / (float64(period) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

func closes(data []domain.Candle) []float64 {
	out := make([]float64, len(data))
	for i, c := range data {
		out[i] = c.Close
	}
	return out
}
