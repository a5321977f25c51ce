package execution

import (
	"context"
	"errors"
	"testing"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/infra"

	"github.com/shopspring/decimal"
)

func TestMockExecution_ImplementsInterface(t *testing.T) {
	var _ Execution = (*MockExecution)(nil) // Compile-time check
	var _ Execution = (*RemoteExecution)(nil)
}

func buy(assetID int64, amount, price string) domain.TradeRequest {
	return domain.TradeRequest{
		UserID:  1,
		AssetID: assetID,
		Amount:  decimal.RequireFromString(amount),
		Price:   decimal.RequireFromString(price),
		Side:    domain.TradeBuy,
	}
}

func TestMockExecution_BuyThenSell(t *testing.T) {
	m := NewMockExecution(decimal.NewFromInt(1_000_000))
	ctx := context.Background()

	res, err := Submit(ctx, m, buy(1, "0.01", "95000000"))
	if err != nil || !res.Success {
		t.Fatalf("buy failed: %+v %v", res, err)
	}
	if got := m.Balance(QuoteAsset); !got.Equal(decimal.NewFromInt(50_000)) {
		t.Errorf("KRW balance = %s; want 50000", got)
	}
	if got := m.Balance(1); !got.Equal(decimal.RequireFromString("0.01")) {
		t.Errorf("asset balance = %s; want 0.01", got)
	}

	sell := buy(1, "0.004", "100000000")
	sell.Side = domain.TradeSell
	if _, err := Submit(ctx, m, sell); err != nil {
		t.Fatalf("sell failed: %v", err)
	}
	if got := m.Balance(QuoteAsset); !got.Equal(decimal.NewFromInt(450_000)) {
		t.Errorf("KRW balance = %s; want 450000", got)
	}
	if len(m.Fills()) != 2 {
		t.Errorf("expected 2 fills, got %d", len(m.Fills()))
	}
}

func TestMockExecution_Rejections(t *testing.T) {
	m := NewMockExecution(decimal.NewFromInt(1000))
	ctx := context.Background()

	tests := []struct {
		name string
		req  domain.TradeRequest
	}{
		{"insufficient KRW", buy(1, "1", "5000")},
		{"zero amount", buy(1, "0", "5000")},
		{"missing asset", buy(0, "1", "1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Submit(ctx, m, tt.req)
			if !errors.Is(err, domain.ErrTradeRejected) {
				t.Errorf("expected ErrTradeRejected, got %v", err)
			}
			if res.Success {
				t.Error("rejected trade reported success")
			}
		})
	}

	sell := buy(2, "1", "1")
	if _, err := m.MarketSell(ctx, sell); !errors.Is(err, domain.ErrTradeRejected) {
		t.Errorf("selling an unheld asset must be rejected, got %v", err)
	}
	if !m.Balance(QuoteAsset).Equal(decimal.NewFromInt(1000)) {
		t.Error("rejected trades must not move balances")
	}
}

type stubClient struct {
	buys, sells int
}

func (s *stubClient) MarketBuy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	s.buys++
	return domain.TradeResult{Success: true}, nil
}

func (s *stubClient) MarketSell(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	s.sells++
	return domain.TradeResult{Success: true}, nil
}

func TestNewExecution(t *testing.T) {
	cfg := &infra.Config{}
	cfg.Trading.Mode = infra.ModeMock
	ex, err := NewExecution(cfg, nil)
	if err != nil {
		t.Fatalf("mock mode: %v", err)
	}
	if _, ok := ex.(*MockExecution); !ok {
		t.Errorf("expected MockExecution, got %T", ex)
	}

	cfg.Trading.Mode = infra.ModeLive
	t.Setenv("PICKCOIN_CONFIRM_LIVE", "")
	if _, err := NewExecution(cfg, &stubClient{}); err == nil {
		t.Error("live mode without confirmation must fail")
	}

	t.Setenv("PICKCOIN_CONFIRM_LIVE", "true")
	client := &stubClient{}
	ex, err = NewExecution(cfg, client)
	if err != nil {
		t.Fatalf("live mode: %v", err)
	}

	sell := buy(1, "1", "1")
	sell.Side = domain.TradeSell
	Submit(context.Background(), ex, buy(1, "1", "1"))
	Submit(context.Background(), ex, sell)
	if client.buys != 1 || client.sells != 1 {
		t.Errorf("expected routing by side, got buys=%d sells=%d", client.buys, client.sells)
	}

	if _, err := ex.MarketBuy(context.Background(), domain.TradeRequest{}); !errors.Is(err, domain.ErrTradeRejected) {
		t.Error("invalid request must not reach the backend")
	}
	if client.buys != 1 {
		t.Error("invalid request reached the client")
	}
}
