package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pickcoin_go/internal/domain"

	"github.com/shopspring/decimal"
)

// QuoteAsset is the balance key for the KRW cash balance.
const QuoteAsset int64 = 0

// Fill represents a simulated order fill.
type Fill struct {
	TradeID      int64
	AssetID      int64
	Side         domain.TradeSide
	Price        decimal.Decimal
	Amount       decimal.Decimal
	TsUnixMicros int64
}

// MockExecution fills market orders against in-memory balances.
// Nothing leaves the process.
type MockExecution struct {
	mu       sync.Mutex
	balances map[int64]decimal.Decimal // asset id -> amount, QuoteAsset = KRW
	fills    []Fill
	nextID   int64
}

// NewMockExecution starts with initialKRW of virtual cash.
func NewMockExecution(initialKRW decimal.Decimal) *MockExecution {
	return &MockExecution{
		balances: map[int64]decimal.Decimal{QuoteAsset: initialKRW},
		nextID:   1,
	}
}

// Deposit adds funds to the virtual account.
func (m *MockExecution) Deposit(assetID int64, amount decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[assetID] = m.balances[assetID].Add(amount)
}

// Balance returns the held amount of an asset.
func (m *MockExecution) Balance(assetID int64) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[assetID]
}

// MarketBuy debits KRW and credits the asset.
func (m *MockExecution) MarketBuy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	req.Side = domain.TradeBuy
	return m.fill(req)
}

// MarketSell debits the asset and credits KRW.
func (m *MockExecution) MarketSell(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	req.Side = domain.TradeSell
	return m.fill(req)
}

func (m *MockExecution) fill(req domain.TradeRequest) (domain.TradeResult, error) {
	if err := req.Validate(); err != nil {
		return domain.TradeResult{Message: err.Error()}, fmt.Errorf("%w: %v", domain.ErrTradeRejected, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	notional := req.Notional()
	debitAsset, debit := QuoteAsset, notional
	creditAsset, credit := req.AssetID, req.Amount
	if req.Side == domain.TradeSell {
		debitAsset, debit = req.AssetID, req.Amount
		creditAsset, credit = QuoteAsset, notional
	}

	if have := m.balances[debitAsset]; have.LessThan(debit) {
		msg := fmt.Sprintf("insufficient balance: need %s, have %s", debit.String(), have.String())
		return domain.TradeResult{Message: msg}, fmt.Errorf("%w: %s", domain.ErrTradeRejected, msg)
	}
	m.balances[debitAsset] = m.balances[debitAsset].Sub(debit)
	m.balances[creditAsset] = m.balances[creditAsset].Add(credit)

	id := m.nextID
	m.nextID++
	m.fills = append(m.fills, Fill{
		TradeID:      id,
		AssetID:      req.AssetID,
		Side:         req.Side,
		Price:        req.Price,
		Amount:       req.Amount,
		TsUnixMicros: time.Now().UnixMicro(),
	})

	slog.Info("MOCK EXECUTION: Order Filled",
		slog.Int64("trade_id", id),
		slog.Int64("asset_id", req.AssetID),
		slog.String("side", string(req.Side)),
		slog.String("price", req.Price.String()),
		slog.String("amount", req.Amount.String()))

	return domain.TradeResult{Success: true, Message: "filled", TradeID: id}, nil
}

// Fills returns all executed fills.
func (m *MockExecution) Fills() []Fill {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Fill, len(m.fills))
	copy(out, m.fills)
	return out
}
