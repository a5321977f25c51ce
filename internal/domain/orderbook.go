package domain

import "math"

// Side identifies one side of an order-book ladder.
type Side string

const (
	SideAsk Side = "ask"
	SideBid Side = "bid"
)

// PriceLevel is one row of a real or synthesized order-book side.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Valid reports whether the level satisfies Price > 0 and Quantity >= 0
// with both values finite.
func (l PriceLevel) Valid() bool {
	return finite(l.Price) && finite(l.Quantity) && l.Price > 0 && l.Quantity >= 0
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// OrderBookSnapshot is the backend book for one symbol.
// It is replaced wholesale on each inbound message or polling tick.
type OrderBookSnapshot struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp *int64       `json:"timestamp"` // Unix Milli, nil when the source omits it
}

// IsEmpty reports whether neither side carries a level.
func (s *OrderBookSnapshot) IsEmpty() bool {
	return len(s.Bids) == 0 && len(s.Asks) == 0
}

// Clone returns a deep copy so readers never share slices with the writer.
func (s OrderBookSnapshot) Clone() OrderBookSnapshot {
	out := OrderBookSnapshot{Symbol: s.Symbol}
	if s.Bids != nil {
		out.Bids = append([]PriceLevel(nil), s.Bids...)
	}
	if s.Asks != nil {
		out.Asks = append([]PriceLevel(nil), s.Asks...)
	}
	if s.Timestamp != nil {
		ts := *s.Timestamp
		out.Timestamp = &ts
	}
	return out
}

// Sanitize drops levels that violate the PriceLevel invariant.
func (s OrderBookSnapshot) Sanitize() OrderBookSnapshot {
	s.Bids = filterValid(s.Bids)
	s.Asks = filterValid(s.Asks)
	return s
}

func filterValid(levels []PriceLevel) []PriceLevel {
	out := levels[:0:0]
	for _, l := range levels {
		if l.Valid() {
			out = append(out, l)
		}
	}
	return out
}

// MarketSymbol returns the KRW pair key used by the backend ("BTC" -> "BTC_KRW").
func MarketSymbol(coin string) string {
	return coin + "_KRW"
}
