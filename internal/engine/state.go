package engine

import (
	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/event"
)

// State is the realtime view state. Values of State are never mutated
// after publication; Reduce returns a new one.
type State struct {
	Tickers   map[string]domain.TickerUpdate `json:"tickers"`
	OrderBook domain.OrderBookSnapshot       `json:"orderbook"`
	HasBook   bool                           `json:"has_book"`
	Selected  string                         `json:"selected"` // coin, e.g. "BTC"
	Conn      domain.ConnState               `json:"conn"`
}

// Connected reports whether the feed is open.
func (s State) Connected() bool {
	return s.Conn == domain.ConnOpen
}

// Clone deep-copies the state for external readers.
func (s State) Clone() State {
	out := s
	out.Tickers = make(map[string]domain.TickerUpdate, len(s.Tickers))
	for k, v := range s.Tickers {
		out.Tickers[k] = v
	}
	out.OrderBook = s.OrderBook.Clone()
	return out
}

// Reduce applies ev to s. The second result is false when ev was ignored.
func Reduce(s State, ev event.Event) (State, bool) {
	switch e := ev.(type) {
	case *event.TickerEvent:
		return reduceTicker(s, e.Ticker)
	case *event.OrderBookEvent:
		return reduceOrderBook(s, e.Book)
	case *event.ConnStateEvent:
		if s.Conn == e.State {
			return s, false
		}
		s.Conn = e.State
		return s, true
	case *event.SelectSymbolEvent:
		if s.Selected == e.Coin {
			return s, false
		}
		s.Selected = e.Coin
		s.OrderBook = domain.OrderBookSnapshot{}
		s.HasBook = false
		return s, true
	default:
		return s, false
	}
}

func reduceTicker(s State, t domain.TickerUpdate) (State, bool) {
	if t.Symbol == "" {
		return s, false
	}

	var prev *domain.TickerUpdate
	if p, ok := s.Tickers[t.Symbol]; ok {
		prev = &p
	}
	t.PriceDirection = domain.DirectionOf(prev, t.ClosePrice)

	// Copy-on-write: published maps stay untouched.
	next := make(map[string]domain.TickerUpdate, len(s.Tickers)+1)
	for k, v := range s.Tickers {
		next[k] = v
	}
	next[t.Symbol] = t
	s.Tickers = next
	return s, true
}

func reduceOrderBook(s State, book domain.OrderBookSnapshot) (State, bool) {
	if s.Selected == "" || book.Symbol != domain.MarketSymbol(s.Selected) {
		return s, false
	}
	s.OrderBook = book.Clone().Sanitize()
	s.HasBook = true
	return s, true
}
