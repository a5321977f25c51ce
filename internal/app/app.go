package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"pickcoin_go/internal/animator"
	"pickcoin_go/internal/chart"
	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/engine"
	"pickcoin_go/internal/event"
	"pickcoin_go/internal/execution"
	"pickcoin_go/internal/indicator"
	"pickcoin_go/internal/infra"
	"pickcoin_go/internal/infra/realtime"
	"pickcoin_go/internal/orderbook"
	"pickcoin_go/internal/view"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const inboxSize = 1024

// App wires the feed, the view state and the ladder pipeline together.
type App struct {
	boot *Bootstrap
	cfg  *infra.Config

	engine    *engine.Engine
	feed      *realtime.Worker
	pull      *orderbook.PullProvider
	books     *orderbook.Selector
	synth     *orderbook.Synthesizer
	anim      *animator.Animator
	candles   *chart.Source
	publisher *infra.TickerPublisher
	exec      execution.Execution
	renderer  *view.Renderer

	// last reconciled ladder
	mu        sync.Mutex
	market    string // market the ladder belongs to
	lastRef   float64
	lastBook  domain.OrderBookSnapshot
	lastKind  orderbook.Kind
	ladder    domain.Ladder
	hasLadder bool
}

// New builds the runtime from an initialized Bootstrap. Frames are written to out.
func New(b *Bootstrap, out io.Writer) (*App, error) {
	cfg := b.Config
	a := &App{
		boot:     b,
		cfg:      cfg,
		synth:    orderbook.NewSynthesizer(nil),
		anim:     animator.New(nil, nil),
		candles:  chart.NewSource(b.Store, cfg.Chart.IntervalSec, cfg.Chart.HistoryCandles, cfg.Chart.Seed),
		renderer: view.NewRenderer(out, cfg.UI.Color, cfg.UI.Color),
	}
	a.engine = engine.NewEngine(inboxSize, nil)
	if b.DumpDir != "" {
		a.engine.SetDumpPath(filepath.Join(b.DumpDir, "engine_panic.json"))
	}

	a.engine.AddTickerSink(a.candles.Offer)
	if cfg.Redis.Enabled {
		pub, err := infra.NewTickerPublisher(cfg)
		if err != nil {
			// Fan-out is optional; the view works without it.
			slog.Warn("Ticker publisher disabled", slog.Any("error", err))
		} else {
			a.publisher = pub
			a.engine.AddTickerSink(pub.Offer)
		}
	}

	a.feed = realtime.NewWorker(cfg.API.WSURL, a.engine.Inbox())
	a.feed.Configure(cfg)

	a.pull = orderbook.NewPullProvider(b.Client, time.Duration(cfg.OrderBook.PollIntervalMS)*time.Millisecond)
	a.books = orderbook.NewSelector(orderbook.NewPushProvider(a.engine), a.pull)

	ex, err := execution.NewExecution(cfg, b.Client)
	if err != nil {
		return nil, err
	}
	a.exec = ex

	return a, nil
}

// Engine exposes the view state owner.
func (a *App) Engine() *engine.Engine { return a.engine }

// Run starts every loop and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.engine.Run(ctx)
		return nil
	})
	g.Go(func() error { return a.candles.Run(ctx) })
	if a.publisher != nil {
		g.Go(func() error { return a.publisher.Run(ctx) })
	}

	if err := a.Select(ctx, a.cfg.Market.Selected); err != nil {
		return err
	}

	a.feed.Start(ctx)
	defer a.feed.Stop()
	a.pull.Start(ctx)
	defer a.pull.Stop()
	a.anim.Run(ctx)
	defer a.anim.Close()

	g.Go(func() error {
		if err := a.boot.SyncCoins(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("Coin sync failed, continuing with live data only", slog.Any("error", err))
		}
		return nil
	})
	g.Go(func() error { return a.renderLoop(ctx) })

	slog.Info("✨ PickCoin trading view running", slog.String("market", domain.MarketSymbol(a.cfg.Market.Selected)))
	return g.Wait()
}

// Select switches the tracked coin. The old book is dropped and the ladder
// animates in from zero again.
func (a *App) Select(ctx context.Context, coin string) error {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return fmt.Errorf("empty coin symbol")
	}
	market := domain.MarketSymbol(coin)

	// Frames for the old market stop here, before the engine sees the switch.
	a.mu.Lock()
	a.market = market
	a.lastRef = 0
	a.hasLadder = false
	a.anim.Reset()
	a.mu.Unlock()

	a.pull.SetSymbol(market)

	ev := &event.SelectSymbolEvent{
		BaseEvent: event.BaseEvent{Ts: time.Now().UnixMilli()},
		Coin:      coin,
	}
	select {
	case a.engine.Inbox() <- ev:
	case <-ctx.Done():
		return ctx.Err()
	}

	slog.Info("🎯 Market selected", slog.String("market", market))
	return nil
}

// Trade places a market order for the selected coin at the last price.
func (a *App) Trade(ctx context.Context, side domain.TradeSide, amount decimal.Decimal) (domain.TradeResult, error) {
	coin := a.engine.Selected()
	t, ok := a.engine.Ticker(domain.MarketSymbol(coin))
	if !ok || t.ClosePrice <= 0 {
		return domain.TradeResult{}, fmt.Errorf("%w: no price for %s", domain.ErrTradeRejected, coin)
	}

	info, err := a.boot.ResolveCoin(ctx, coin)
	if err != nil {
		return domain.TradeResult{}, fmt.Errorf("resolve %s: %w", coin, err)
	}

	var userID int64
	if a.cfg.Trading.UserID != "" {
		userID, err = strconv.ParseInt(a.cfg.Trading.UserID, 10, 64)
		if err != nil {
			return domain.TradeResult{}, fmt.Errorf("invalid trading.user_id %q: %w", a.cfg.Trading.UserID, err)
		}
	}

	req := domain.TradeRequest{
		UserID:  userID,
		AssetID: info.AssetID,
		Amount:  amount,
		Price:   decimal.NewFromFloat(t.ClosePrice),
		Side:    side,
	}
	res, err := execution.Submit(ctx, a.exec, req)
	if err != nil {
		slog.Warn("Trade failed", slog.String("side", string(side)), slog.String("coin", coin), slog.Any("error", err))
		return res, err
	}
	slog.Info("💸 Trade accepted", slog.String("side", string(side)), slog.String("coin", coin),
		slog.String("amount", amount.String()), slog.String("price", req.Price.String()))
	return res, nil
}

func (a *App) renderLoop(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(a.cfg.UI.UpdateIntervalMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.renderer.Render(a.Frame(ctx)); err != nil {
				return fmt.Errorf("render: %w", err)
			}
		}
	}
}

// Frame assembles the current view. The ladder is reconciled again only
// when the reference price or the book changed; otherwise the previous
// ladder is re-synced so animations keep progressing.
func (a *App) Frame(ctx context.Context) view.Frame {
	st := a.engine.State()
	symbol := domain.MarketSymbol(st.Selected)

	f := view.Frame{Symbol: symbol, Conn: st.Conn}

	ref := 0.0
	if t, ok := st.Tickers[symbol]; ok {
		f.Ticker, f.HasTicker = t, true
		ref = t.ClosePrice
	} else if c, ok, err := a.boot.Store.Coin(ctx, st.Selected); err == nil && ok {
		ref = c.Price
		f.Note = "price from coin list, waiting for the feed"
	}

	snap, kind, hasBook := a.books.Snapshot(symbol)
	if !hasBook {
		kind = orderbook.KindPull
		if f.Note == "" {
			f.Note = "no order book yet, depth is synthetic"
		}
	}
	f.Source = kind
	if a.boot.Client.Degraded() {
		f.Note = "backend unreachable, showing last known data"
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.market != "" && a.market != symbol {
		// Selection still queued in the engine.
		return view.Frame{Symbol: a.market, Conn: st.Conn, Note: "switching market"}
	}

	if ref > 0 {
		if ref != a.lastRef || kind != a.lastKind || !sameBook(snap, a.lastBook) {
			ladder, err := orderbook.Reconcile(snap, ref, a.synth)
			if err != nil {
				slog.Warn("Reconcile failed", slog.String("symbol", symbol), slog.Any("error", err))
			} else {
				a.ladder, a.hasLadder = ladder, true
				a.lastRef, a.lastBook, a.lastKind = ref, snap, kind
			}
		}
	}
	if a.hasLadder {
		a.anim.Sync(&a.ladder)
		f.Ladder = a.ladder
		f.Ladder.Asks = append([]domain.LadderRow(nil), a.ladder.Asks...)
		f.Ladder.Bids = append([]domain.LadderRow(nil), a.ladder.Bids...)
		f.HasLadder = true
	}

	f.Stats = a.stats(ctx, symbol)
	return f
}

func (a *App) stats(ctx context.Context, symbol string) []view.Stat {
	ov, err := a.candles.Overlays(ctx, symbol)
	if err != nil {
		return nil
	}

	stat := func(label string, points []indicator.Point) view.Stat {
		v, ok := chart.Last(points)
		return view.Stat{Label: label, Value: v, OK: ok}
	}
	out := []view.Stat{
		stat("SMA20", ov.SMA20),
		stat("EMA20", ov.EMA20),
		stat("RSI14", ov.RSI),
		stat("W%R14", ov.WilliamsR),
		stat("ATR14", ov.ATR),
		stat("VWAP", ov.VWAP),
	}
	if n := len(ov.MACD); n > 0 {
		out = append(out, view.Stat{Label: "MACD", Value: ov.MACD[n-1].Histogram, OK: true})
	}
	if n := len(ov.Stochastic); n > 0 {
		out = append(out, view.Stat{Label: "STOCH %K", Value: ov.Stochastic[n-1].K, OK: true})
	}
	return out
}

// sameBook reports whether two snapshots carry identical levels.
func sameBook(a, b domain.OrderBookSnapshot) bool {
	if a.Symbol != b.Symbol || len(a.Bids) != len(b.Bids) || len(a.Asks) != len(b.Asks) {
		return false
	}
	for i := range a.Bids {
		if a.Bids[i] != b.Bids[i] {
			return false
		}
	}
	for i := range a.Asks {
		if a.Asks[i] != b.Asks[i] {
			return false
		}
	}
	return true
}
