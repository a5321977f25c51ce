package execution

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/infra"

	"github.com/shopspring/decimal"
)

// DefaultMockBalanceKRW is the virtual cash of a MOCK session.
var DefaultMockBalanceKRW = decimal.NewFromInt(100_000_000)

// TradeClient is the REST surface RemoteExecution forwards to.
type TradeClient interface {
	MarketBuy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error)
	MarketSell(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error)
}

// NewExecution returns the implementation for trading.mode.
func NewExecution(cfg *infra.Config, client TradeClient) (Execution, error) {
	slog.Info("Initializing Execution System", "mode", cfg.Trading.Mode)

	switch cfg.Trading.Mode {
	case infra.ModeMock:
		return NewMockExecution(DefaultMockBalanceKRW), nil

	case infra.ModeLive:
		// Safety latch
		if os.Getenv("PICKCOIN_CONFIRM_LIVE") != "true" {
			return nil, fmt.Errorf("SAFETY_GUARD: %s trading requires PICKCOIN_CONFIRM_LIVE=true", infra.ModeLive)
		}
		if client == nil {
			return nil, fmt.Errorf("%s trading requires an API client", infra.ModeLive)
		}
		slog.Info("🚨 Market orders will be sent to the backend")
		return NewRemoteExecution(client), nil

	default:
		return nil, fmt.Errorf("unknown execution mode: %s", cfg.Trading.Mode)
	}
}

// RemoteExecution forwards validated orders to the backend.
type RemoteExecution struct {
	client TradeClient
}

func NewRemoteExecution(client TradeClient) *RemoteExecution {
	return &RemoteExecution{client: client}
}

func (e *RemoteExecution) MarketBuy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	req.Side = domain.TradeBuy
	if err := req.Validate(); err != nil {
		return domain.TradeResult{Message: err.Error()}, fmt.Errorf("%w: %v", domain.ErrTradeRejected, err)
	}
	slog.Info("Sending market buy", "asset_id", req.AssetID, "amount", req.Amount.String())
	return e.client.MarketBuy(ctx, req)
}

func (e *RemoteExecution) MarketSell(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	req.Side = domain.TradeSell
	if err := req.Validate(); err != nil {
		return domain.TradeResult{Message: err.Error()}, fmt.Errorf("%w: %v", domain.ErrTradeRejected, err)
	}
	slog.Info("Sending market sell", "asset_id", req.AssetID, "amount", req.Amount.String())
	return e.client.MarketSell(ctx, req)
}
