package indicator

import (
	"math"

	"pickcoin_go/internal/domain"
)

// RSI uses Wilder smoothing. The first value, at index period, averages the
// first period changes. Requires len(data) > period.
func RSI(data []domain.Candle, period int) []Point {
	if period <= 0 || len(data) <= period {
		return nil
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		g, l := change(data[i-1].Close, data[i].Close)
		gain += g
		loss += l
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)

	out := make([]Point, 0, len(data)-period)
	out = append(out, Point{Time: data[period].Time, Value: rsiValue(avgGain, avgLoss)})

	for i := period + 1; i < len(data); i++ {
		g, l := change(data[i-1].Close, data[i].Close)
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
		out = append(out, Point{Time: data[i].Time, Value: rsiValue(avgGain, avgLoss)})
	}
	return out
}

func change(prev, cur float64) (gain, loss float64) {
	d := cur - prev
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func rsiValue(avgGain, avgLoss float64) float64 {
	rs := 100.0
	if avgLoss != 0 {
		rs = avgGain / avgLoss
	}
	return 100 - 100/(1+rs)
}

// Stochastic returns %K over the trailing k candles and %D as the mean of
// the last d %K values including the current one. A flat window reads 50.
func Stochastic(data []domain.Candle, k, d int) []StochPoint {
	if k <= 0 || d <= 0 || len(data) < k {
		return nil
	}

	out := make([]StochPoint, 0, len(data)-k+1)
	ks := make([]float64, 0, len(data)-k+1)
	for i := k - 1; i < len(data); i++ {
		hh, ll := highLow(data[i-k+1 : i+1])
		pk := 50.0
		if hh != ll {
			pk = (data[i].Close - ll) / (hh - ll) * 100
		}
		ks = append(ks, pk)

		n := d
		if len(ks) < n {
			n = len(ks)
		}
		sum := 0.0
		for _, v := range ks[len(ks)-n:] {
			sum += v
		}
		out = append(out, StochPoint{Time: data[i].Time, K: pk, D: sum / float64(n)})
	}
	return out
}

// WilliamsR is (highestHigh-close)/(highestHigh-lowestLow) * -100.
// A flat window reads -50.
func WilliamsR(data []domain.Candle, period int) []Point {
	if period <= 0 || len(data) < period {
		return nil
	}

	out := make([]Point, 0, len(data)-period+1)
	for i := period - 1; i < len(data); i++ {
		hh, ll := highLow(data[i-period+1 : i+1])
		v := -50.0
		if hh != ll {
			v = (hh - data[i].Close) / (hh - ll) * -100
		}
		out = append(out, Point{Time: data[i].Time, Value: v})
	}
	return out
}

// ATR averages the true range over the trailing window. The first candle
// has no previous close, so its true range is high-low.
func ATR(data []domain.Candle, period int) []Point {
	if period <= 0 || len(data) < period {
		return nil
	}

	tr := make([]float64, len(data))
	for i, c := range data {
		tr[i] = c.High - c.Low
		if i > 0 {
			prev := data[i-1].Close
			tr[i] = math.Max(tr[i], math.Max(math.Abs(c.High-prev), math.Abs(c.Low-prev)))
		}
	}

	out := make([]Point, 0, len(data)-period+1)
	sum := 0.0
	for i := range tr {
		sum += tr[i]
		if i >= period {
			sum -= tr[i-period]
		}
		if i >= period-1 {
			out = append(out, Point{Time: data[i].Time, Value: sum / float64(period)})
		}
	}
	return out
}

func highLow(window []domain.Candle) (hh, ll float64) {
	hh, ll = math.Inf(-1), math.Inf(1)
	for _, c := range window {
		hh = math.Max(hh, c.High)
		ll = math.Min(ll, c.Low)
	}
	return hh, ll
}
