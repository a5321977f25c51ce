package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"pickcoin_go/internal/domain"

	"github.com/go-redis/redis"
)

// TickerPublisher fans ticker updates out to a Redis pub/sub channel so
// other local processes can follow the same feed.
type TickerPublisher struct {
	client  *redis.Client
	channel string
	queue   chan domain.TickerUpdate
	dropped atomic.Uint64
}

// NewTickerPublisher connects to Redis and verifies the connection.
func NewTickerPublisher(cfg *Config) (*TickerPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := client.Ping().Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	return &TickerPublisher{
		client:  client,
		channel: cfg.Redis.Channel,
		queue:   make(chan domain.TickerUpdate, 256),
	}, nil
}

// Offer queues t without blocking. When the queue is full the update is
// dropped; a later ticker for the same symbol supersedes it anyway.
func (p *TickerPublisher) Offer(t domain.TickerUpdate) {
	select {
	case p.queue <- t:
	default:
		p.dropped.Add(1)
	}
}

// Dropped returns how many updates were discarded on a full queue.
func (p *TickerPublisher) Dropped() uint64 {
	return p.dropped.Load()
}

// Run publishes queued tickers until ctx is done, then closes the client.
func (p *TickerPublisher) Run(ctx context.Context) error {
	defer p.client.Close()
	slog.Info("📣 Ticker publisher started", slog.String("channel", p.channel))

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-p.queue:
			payload, err := json.Marshal(t)
			if err != nil {
				slog.Warn("Ticker encode failed", slog.String("symbol", t.Symbol), slog.Any("error", err))
				continue
			}
			if err := p.client.Publish(p.channel, payload).Err(); err != nil {
				slog.Warn("Ticker publish failed", slog.String("symbol", t.Symbol), slog.Any("error", err))
			}
		}
	}
}
