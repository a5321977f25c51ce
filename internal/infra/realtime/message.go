package realtime

import (
	"errors"
	"math"
	"strconv"
	"time"

	"pickcoin_go/internal/domain"

	"github.com/tidwall/gjson"
)

// Inbound message types.
const (
	TypeTicker    = "ticker"
	TypeOrderBook = "orderbook"
	TypePong      = "pong"
)

var (
	errMalformed     = errors.New("malformed message")
	errMissingSymbol = errors.New("missing symbol")
	errClosePrice    = errors.New("closePrice is not numeric")
	errNotDaily      = errors.New("non-24H tick")
)

// Body returns the payload object. Some backends wrap it in "content".
func Body(msg gjson.Result) gjson.Result {
	if c := msg.Get("content"); c.IsObject() {
		return c
	}
	return msg
}

// Numeric accepts JSON numbers and numeric strings.
func Numeric(r gjson.Result) (float64, bool) {
	var v float64
	switch r.Type {
	case gjson.Number:
		v = r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(r.Str, 64)
		if err != nil {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func optional(r gjson.Result) float64 {
	v, _ := Numeric(r)
	return v
}

func timestampOf(r gjson.Result) int64 {
	if v, ok := Numeric(r); ok && v > 0 {
		return int64(v)
	}
	return time.Now().UnixMilli()
}

// parseTicker decodes a ticker payload. PriceDirection is left empty.
func parseTicker(msg gjson.Result) (domain.TickerUpdate, error) {
	b := Body(msg)

	if tt := b.Get("tickType"); tt.Exists() && tt.String() != "24H" {
		return domain.TickerUpdate{}, errNotDaily
	}

	symbol := b.Get("symbol").String()
	if symbol == "" {
		return domain.TickerUpdate{}, errMissingSymbol
	}
	closePrice, ok := Numeric(b.Get("closePrice"))
	if !ok {
		return domain.TickerUpdate{}, errClosePrice
	}

	return domain.TickerUpdate{
		Symbol:     symbol,
		ClosePrice: closePrice,
		ChgRate:    optional(b.Get("chgRate")),
		ChgAmt:     optional(b.Get("chgAmt")),
		Value:      optional(b.Get("value")),
		Timestamp:  timestampOf(b.Get("timestamp")),
	}, nil
}

// parseOrderBook decodes an orderbook payload.
func parseOrderBook(msg gjson.Result) (domain.OrderBookSnapshot, error) {
	b := Body(msg)

	symbol := b.Get("symbol").String()
	if symbol == "" {
		return domain.OrderBookSnapshot{}, errMissingSymbol
	}

	snap := domain.OrderBookSnapshot{
		Symbol: symbol,
		Bids:   ParseLevels(b.Get("bids")),
		Asks:   ParseLevels(b.Get("asks")),
	}
	if ts, ok := Numeric(b.Get("timestamp")); ok {
		v := int64(ts)
		snap.Timestamp = &v
	}
	return snap, nil
}

// ParseLevels decodes a side of a book. Levels may be
// {"price":..,"quantity":..} objects or [price, quantity] pairs;
// entries with non-numeric fields are skipped.
func ParseLevels(r gjson.Result) []domain.PriceLevel {
	if !r.IsArray() {
		return nil
	}
	items := r.Array()
	out := make([]domain.PriceLevel, 0, len(items))
	for _, item := range items {
		var price, qty float64
		var okP, okQ bool
		if item.IsArray() {
			pair := item.Array()
			if len(pair) < 2 {
				continue
			}
			price, okP = Numeric(pair[0])
			qty, okQ = Numeric(pair[1])
		} else {
			price, okP = Numeric(item.Get("price"))
			qty, okQ = Numeric(item.Get("quantity"))
		}
		if okP && okQ {
			out = append(out, domain.PriceLevel{Price: price, Quantity: qty})
		}
	}
	return out
}
