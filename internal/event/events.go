package event

import (
	"pickcoin_go/internal/domain"
)

// Type defines the type of event.
type Type uint16

const (
	EvTicker Type = iota + 1
	EvOrderBook
	EvConnState
	EvSelectSymbol
)

func (t Type) String() string {
	switch t {
	case EvTicker:
		return "TICKER"
	case EvOrderBook:
		return "ORDERBOOK"
	case EvConnState:
		return "CONN_STATE"
	case EvSelectSymbol:
		return "SELECT_SYMBOL"
	default:
		return "UNKNOWN"
	}
}

// Event is the interface for all engine events.
type Event interface {
	GetSeq() uint64
	GetTs() int64
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"` // Unix Milli
}

func (e BaseEvent) GetSeq() uint64 { return e.Seq }
func (e BaseEvent) GetTs() int64   { return e.Ts }

// TickerEvent carries one inbound ticker message.
// PriceDirection is derived by the engine, not by the sender.
type TickerEvent struct {
	BaseEvent
	Ticker domain.TickerUpdate `json:"ticker"`
}

func (e TickerEvent) GetType() Type { return EvTicker }

// OrderBookEvent replaces the order book of the selected symbol.
type OrderBookEvent struct {
	BaseEvent
	Book domain.OrderBookSnapshot `json:"book"`
}

func (e OrderBookEvent) GetType() Type { return EvOrderBook }

// ConnStateEvent reports a feed connection transition.
type ConnStateEvent struct {
	BaseEvent
	State domain.ConnState `json:"state"`
}

func (e ConnStateEvent) GetType() Type { return EvConnState }

// SelectSymbolEvent changes the coin whose order book is tracked ("BTC").
type SelectSymbolEvent struct {
	BaseEvent
	Coin string `json:"coin"`
}

func (e SelectSymbolEvent) GetType() Type { return EvSelectSymbol }
