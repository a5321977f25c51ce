package domain

// PriceDirection is the movement of a ticker versus its previous close.
type PriceDirection string

const (
	DirectionUp   PriceDirection = "up"
	DirectionDown PriceDirection = "down"
	DirectionSame PriceDirection = "same"
)

// TickerUpdate is the latest 24h summary for one symbol (e.g. "BTC_KRW").
type TickerUpdate struct {
	Symbol         string         `json:"symbol"`
	ClosePrice     float64        `json:"closePrice"`
	ChgRate        float64        `json:"chgRate"`
	ChgAmt         float64        `json:"chgAmt"`
	Value          float64        `json:"value"`
	Timestamp      int64          `json:"timestamp"` // Unix Milli
	PriceDirection PriceDirection `json:"priceDirection"`
}

// DirectionOf compares a new close price against the previously stored one.
// A first observation (no previous) is "same".
func DirectionOf(prev *TickerUpdate, closePrice float64) PriceDirection {
	if prev == nil {
		return DirectionSame
	}
	switch {
	case closePrice > prev.ClosePrice:
		return DirectionUp
	case closePrice < prev.ClosePrice:
		return DirectionDown
	default:
		return DirectionSame
	}
}

// ChangeDirection returns "positive", "negative", or "neutral" for the 24h change.
func (t *TickerUpdate) ChangeDirection() string {
	if t.ChgRate > 0 {
		return "positive"
	}
	if t.ChgRate < 0 {
		return "negative"
	}
	return "neutral"
}
