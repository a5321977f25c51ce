package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pickcoin_go/internal/app"
	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/infra"

	_ "net/http/pprof" // For pprof profiling

	"github.com/shopspring/decimal"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: configs/config.yaml)")
	symbol := flag.String("symbol", "", "coin to show on start, e.g. BTC")
	pprofAddr := flag.String("pprof", "", "serve pprof on this address, e.g. localhost:6060")
	flag.Parse()

	// 1. Pprof Server (for performance profiling)
	if *pprofAddr != "" {
		go func() {
			slog.Info("🕵️ Pprof server started", slog.String("addr", *pprofAddr))
			if err := http.ListenAndServe(*pprofAddr, nil); err != nil {
				slog.Error("Pprof server failed", slog.Any("error", err))
			}
		}()
	}

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	cfg := bootstrap.Config
	if *symbol != "" {
		cfg.Market.Selected = strings.ToUpper(*symbol)
	}
	infra.PrintBanner(os.Stdout, cfg)

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	view, err := app.New(bootstrap, os.Stdout)
	if err != nil {
		slog.Error("❌ Failed to build trading view", slog.Any("error", err))
		os.Exit(1)
	}

	// 4. Operator commands on stdin
	go readCommands(ctx, os.Stdin, view)

	if err := view.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Trading view stopped with error", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("👋 Shutting down gracefully...")
}

// readCommands handles "buy <amount>", "sell <amount>" and "select <coin>".
func readCommands(ctx context.Context, r io.Reader, view *app.App) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "select":
			if len(fields) != 2 {
				fmt.Println("usage: select <coin>")
				continue
			}
			if err := view.Select(ctx, fields[1]); err != nil {
				fmt.Println("select failed:", err)
			}

		case "buy", "sell":
			if len(fields) != 2 {
				fmt.Printf("usage: %s <amount>\n", cmd)
				continue
			}
			amount, err := decimal.NewFromString(fields[1])
			if err != nil {
				fmt.Println("invalid amount:", err)
				continue
			}
			side := domain.TradeBuy
			if cmd == "sell" {
				side = domain.TradeSell
			}
			res, err := view.Trade(ctx, side, amount)
			if err != nil {
				fmt.Println("trade failed:", err)
				continue
			}
			fmt.Printf("trade %d: %s\n", res.TradeID, res.Message)

		default:
			fmt.Println("commands: select <coin> | buy <amount> | sell <amount>")
		}
	}
}
