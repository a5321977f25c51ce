package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// TradeSide is a market order direction.
type TradeSide string

const (
	TradeBuy  TradeSide = "BUY"
	TradeSell TradeSide = "SELL"
)

// TradeRequest is the body of a market buy/sell call.
type TradeRequest struct {
	UserID  int64           `json:"user_id"`
	AssetID int64           `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
	Price   decimal.Decimal `json:"price"`
	Side    TradeSide       `json:"-"`
}

// TradeResult is the backend acknowledgement of a trade.
type TradeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	TradeID int64  `json:"trade_id,omitempty"`
}

// Validate checks the request before it leaves the process.
func (r *TradeRequest) Validate() error {
	if r.Side != TradeBuy && r.Side != TradeSell {
		return errors.New("trade side must be BUY or SELL")
	}
	if r.AssetID <= 0 {
		return errors.New("asset id is required")
	}
	if !r.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if !r.Price.IsPositive() {
		return errors.New("price must be positive")
	}
	return nil
}

// Notional returns amount * price.
func (r *TradeRequest) Notional() decimal.Decimal {
	return r.Amount.Mul(r.Price)
}

// ErrTradeRejected is returned when the backend refuses a trade.
var ErrTradeRejected = errors.New("trade rejected")
