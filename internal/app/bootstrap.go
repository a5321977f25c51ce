package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/infra"
	"pickcoin_go/internal/infra/api"
	"pickcoin_go/internal/storage"

	"golang.org/x/sync/errgroup"
)

// Metadata keys written by the coin sync.
const (
	metaCoinSyncAt    = "coins:last_sync"
	metaCoinSyncCount = "coins:count"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config *infra.Config
	Store  *storage.SessionStore
	Client *api.Client

	DumpDir string // post-mortem dumps; empty when unavailable
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration and opens the session resources.
// configPath may be empty to use ResolveConfigPath's search order.
func (b *Bootstrap) Initialize(configPath string) error {
	if err := infra.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath(configPath))
	if err != nil {
		return err // Let main handle the error
	}
	return b.InitializeWith(cfg)
}

// InitializeWith opens the session resources for an already loaded config.
func (b *Bootstrap) InitializeWith(cfg *infra.Config) error {
	b.Config = cfg

	slog.SetDefault(infra.NewLogger(cfg))
	infra.SetUserAgent(cfg.App.Version)
	slog.Info("🚀 Bootstrapping PickCoin...", slog.String("mode", cfg.Trading.Mode))

	store, err := storage.NewSessionStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	b.Store = store
	slog.Info("✅ Session store initialized (in-memory)")

	if dir, err := infra.DumpDir(); err != nil {
		slog.Warn("Dump directory unavailable", slog.Any("error", err))
	} else {
		b.DumpDir = dir
	}

	b.Client = api.NewClient(cfg)
	slog.Info("✅ API client ready", slog.String("base_url", cfg.API.BaseURL))
	return nil
}

// SyncCoins fetches the coin list, resolves missing asset ids with at most
// api.coin_sync_workers requests in flight, and caches the result.
// Per-coin lookup failures are logged and skipped.
func (b *Bootstrap) SyncCoins(ctx context.Context) error {
	slog.Info("🔄 Starting coin synchronization...")

	coins, err := b.Client.Coins(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Config.API.CoinSyncWorkers)

	nowUnixM := time.Now().UnixMicro()
	for _, coin := range coins {
		if coin.Symbol == "" {
			continue
		}
		coin := coin
		g.Go(func() error {
			if coin.AssetID == 0 {
				id, err := b.Client.AssetID(gctx, coin.Symbol)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					slog.Warn("Asset id lookup failed", slog.String("symbol", coin.Symbol), slog.Any("error", err))
				}
				coin.AssetID = id
			}
			coin.UpdatedAtUnixM = nowUnixM
			return b.Store.UpsertCoin(gctx, coin)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("coin sync: %w", err)
	}

	_ = b.Store.UpsertMetadata(ctx, metaCoinSyncCount, strconv.Itoa(len(coins)), nowUnixM)
	_ = b.Store.UpsertMetadata(ctx, metaCoinSyncAt, strconv.FormatInt(nowUnixM, 10), nowUnixM)
	slog.Info("✅ Coin synchronization complete", slog.Int("coins", len(coins)))
	return nil
}

// ResolveCoin returns the cached coin, asking the backend for its asset id
// when the cache has none.
func (b *Bootstrap) ResolveCoin(ctx context.Context, symbol string) (domain.CoinInfo, error) {
	coin, ok, err := b.Store.Coin(ctx, symbol)
	if err != nil {
		return domain.CoinInfo{}, err
	}
	if !ok {
		coin = domain.CoinInfo{Symbol: symbol, IsActive: true}
	}
	if coin.AssetID != 0 {
		return coin, nil
	}

	id, err := b.Client.AssetID(ctx, symbol)
	if err != nil {
		return domain.CoinInfo{}, err
	}
	coin.AssetID = id
	coin.UpdatedAtUnixM = time.Now().UnixMicro()
	if err := b.Store.UpsertCoin(ctx, coin); err != nil {
		return domain.CoinInfo{}, err
	}
	return coin, nil
}

// Close releases the session resources.
func (b *Bootstrap) Close() error {
	if b.Store == nil {
		return nil
	}
	return b.Store.Close()
}
