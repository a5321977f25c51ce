package chart

import (
	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/indicator"
)

// Overlays bundles every indicator drawn over one candle series.
type Overlays struct {
	SMA20      []indicator.Point       `json:"sma20"`
	EMA20      []indicator.Point       `json:"ema20"`
	MACD       []indicator.MACDPoint   `json:"macd"`
	Bollinger  []indicator.BandPoint   `json:"bollinger"`
	RSI        []indicator.Point       `json:"rsi"`
	Stochastic []indicator.StochPoint  `json:"stochastic"`
	WilliamsR  []indicator.Point       `json:"williams_r"`
	ATR        []indicator.Point       `json:"atr"`
	VWAP       []indicator.Point       `json:"vwap"`
	HeikinAshi []domain.Candle         `json:"heikin_ashi"`
	Crosses    []indicator.CrossSignal `json:"crosses"`
}

// Compute runs the default parameter set over candles.
func Compute(candles []domain.Candle) Overlays {
	return Overlays{
		SMA20:      indicator.SMA(candles, 20),
		EMA20:      indicator.EMA(candles, 20),
		MACD:       indicator.MACD(candles, 12, 26, 9),
		Bollinger:  indicator.Bollinger(candles, 20, 2),
		RSI:        indicator.RSI(candles, 14),
		Stochastic: indicator.Stochastic(candles, 14, 3),
		WilliamsR:  indicator.WilliamsR(candles, 14),
		ATR:        indicator.ATR(candles, 14),
		VWAP:       indicator.VWAP(candles),
		HeikinAshi: indicator.HeikinAshi(candles),
		Crosses:    indicator.CrossSignals(candles, 5, 20),
	}
}

// Last returns the newest value of a point series.
func Last(points []indicator.Point) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	return points[len(points)-1].Value, true
}
