// Command ladder fetches one order book over REST, reconciles it around the
// coin's current price and prints the ladder once.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"pickcoin_go/internal/app"
	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/orderbook"
	"pickcoin_go/internal/view"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: configs/config.yaml)")
	symbol := flag.String("symbol", "", "coin to print, e.g. BTC (default: market.selected)")
	seed := flag.Int64("seed", 0, "seed for synthetic depth; 0 uses the clock")
	flag.Parse()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config
	coin := cfg.Market.Selected
	if *symbol != "" {
		coin = strings.ToUpper(*symbol)
	}
	market := domain.MarketSymbol(coin)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.API.TimeoutSec)*2*time.Second)
	defer cancel()

	info, err := bootstrap.Client.Coin(ctx, coin)
	if err != nil {
		slog.Error("❌ Failed to fetch coin", slog.String("coin", coin), slog.Any("error", err))
		os.Exit(1)
	}

	// A missing book still prints a fully synthetic ladder.
	book, err := bootstrap.Client.OrderBook(ctx, market)
	if err != nil {
		slog.Warn("Order book unavailable, depth is synthetic", slog.String("market", market), slog.Any("error", err))
		book = domain.OrderBookSnapshot{Symbol: market}
	}

	synth := orderbook.NewSynthesizer(nil)
	if *seed != 0 {
		synth = orderbook.NewSeededSynthesizer(*seed)
	}

	ladder, err := orderbook.Reconcile(book.Sanitize(), info.Price, synth)
	if err != nil {
		slog.Error("❌ Reconcile failed", slog.Float64("price", info.Price), slog.Any("error", err))
		os.Exit(1)
	}
	for i := range ladder.Asks {
		ladder.Asks[i].AnimatedQuantity = ladder.Asks[i].DisplayQuantity
	}
	for i := range ladder.Bids {
		ladder.Bids[i].AnimatedQuantity = ladder.Bids[i].DisplayQuantity
	}

	frame := view.Frame{
		Symbol: market,
		Ticker: domain.TickerUpdate{
			Symbol:     market,
			ClosePrice: info.Price,
			ChgRate:    info.ChgRate,
		},
		HasTicker: true,
		Ladder:    ladder,
		HasLadder: true,
		Source:    orderbook.KindPull,
		Conn:      domain.ConnClosed,
	}
	if err := view.NewRenderer(os.Stdout, cfg.UI.Color, false).Render(frame); err != nil {
		slog.Error("Render failed", slog.Any("error", err))
		os.Exit(1)
	}
}
