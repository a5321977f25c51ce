package execution

import (
	"context"
	"fmt"

	"pickcoin_go/internal/domain"
)

// Execution places market orders.
type Execution interface {
	// MarketBuy spends Amount*Price KRW on the asset.
	MarketBuy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error)

	// MarketSell sells Amount of the asset at Price.
	MarketSell(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error)
}

// Submit validates req and routes it by side.
func Submit(ctx context.Context, ex Execution, req domain.TradeRequest) (domain.TradeResult, error) {
	if err := req.Validate(); err != nil {
		return domain.TradeResult{Message: err.Error()}, fmt.Errorf("%w: %v", domain.ErrTradeRejected, err)
	}
	if req.Side == domain.TradeBuy {
		return ex.MarketBuy(ctx, req)
	}
	return ex.MarketSell(ctx, req)
}
