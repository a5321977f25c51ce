package domain

// Candle is one OHLCV bar. Time is the bar open in Unix seconds.
// Series are ordered ascending by Time.
type Candle struct {
	Time   int64   `json:"time" db:"time"`
	Open   float64 `json:"open" db:"open"`
	High   float64 `json:"high" db:"high"`
	Low    float64 `json:"low" db:"low"`
	Close  float64 `json:"close" db:"close"`
	Volume float64 `json:"volume" db:"volume"`
}

// TypicalPrice returns (high+low+close)/3.
func (c Candle) TypicalPrice() float64 {
	return (c.High + c.Low + c.Close) / 3
}
