package chart

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"pickcoin_go/internal/domain"
)

// CandleStore is the session cache the source reads and writes.
type CandleStore interface {
	UpsertCandles(ctx context.Context, symbol string, intervalSec int, candles []domain.Candle) error
	Candles(ctx context.Context, symbol string, intervalSec, limit int) ([]domain.Candle, error)
	LastCandle(ctx context.Context, symbol string, intervalSec int) (domain.Candle, bool, error)
}

// Source keeps one candle series per market symbol: synthesized history
// on first use, then live bars built from the ticker stream.
type Source struct {
	store       CandleStore
	intervalSec int
	history     int
	seed        int64

	queue chan domain.TickerUpdate

	mu       sync.Mutex
	builders map[string]*Builder
}

// NewSource creates a source for intervalSec bars keeping history bars.
func NewSource(store CandleStore, intervalSec, history int, seed int64) *Source {
	return &Source{
		store:       store,
		intervalSec: intervalSec,
		history:     history,
		seed:        seed,
		queue:       make(chan domain.TickerUpdate, 1024),
		builders:    make(map[string]*Builder),
	}
}

// Offer queues a ticker without blocking; it is dropped when the queue is full.
func (s *Source) Offer(t domain.TickerUpdate) {
	select {
	case s.queue <- t:
	default:
	}
}

// Run applies queued tickers until ctx is done.
func (s *Source) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-s.queue:
			if err := s.Apply(ctx, t); err != nil {
				slog.Warn("Candle update failed", slog.String("symbol", t.Symbol), slog.Any("error", err))
			}
		}
	}
}

// Apply folds one ticker into its symbol's series and caches the open bar.
func (s *Source) Apply(ctx context.Context, t domain.TickerUpdate) error {
	if t.Timestamp == 0 {
		t.Timestamp = time.Now().UnixMilli()
	}
	if err := s.Ensure(ctx, t.Symbol, t.ClosePrice, t.Timestamp/1000); err != nil {
		return err
	}

	s.mu.Lock()
	b := s.builders[t.Symbol]
	finished, closed := b.Apply(t)
	current, ok := b.Current()
	s.mu.Unlock()

	var bars []domain.Candle
	if closed {
		bars = append(bars, finished)
	}
	if ok {
		bars = append(bars, current)
	}
	return s.store.UpsertCandles(ctx, t.Symbol, s.intervalSec, bars)
}

// Ensure makes sure symbol has history. When the cache is empty a random
// walk ending at price is generated; the seed mixes the configured seed
// with the symbol so each market gets its own stable series.
func (s *Source) Ensure(ctx context.Context, symbol string, price float64, nowSec int64) error {
	s.mu.Lock()
	_, ok := s.builders[symbol]
	s.mu.Unlock()
	if ok {
		return nil
	}

	b := NewBuilder(s.intervalSec)
	last, found, err := s.store.LastCandle(ctx, symbol, s.intervalSec)
	if err != nil {
		return err
	}

	if !found {
		if !(price > 0) {
			return fmt.Errorf("no history and no price for %s", symbol)
		}
		interval := int64(s.intervalSec)
		end := nowSec - nowSec%interval - interval // last closed bar
		series := Synthesize(WalkParams{
			Seed:        s.seed ^ symbolSeed(symbol),
			Count:       s.history,
			IntervalSec: s.intervalSec,
			EndTime:     end,
			LastClose:   price,
		})
		if err := s.store.UpsertCandles(ctx, symbol, s.intervalSec, series); err != nil {
			return err
		}
		slog.Info("📊 Synthesized candle history", slog.String("symbol", symbol), slog.Int("bars", len(series)))
		if n := len(series); n > 0 {
			last, found = series[n-1], true
		}
	}
	if found {
		b.Seed(last)
	}

	s.mu.Lock()
	if _, ok := s.builders[symbol]; !ok {
		s.builders[symbol] = b
	}
	s.mu.Unlock()
	return nil
}

// Candles returns the newest history bars for symbol.
func (s *Source) Candles(ctx context.Context, symbol string) ([]domain.Candle, error) {
	return s.store.Candles(ctx, symbol, s.intervalSec, s.history)
}

// Overlays computes indicators over the cached series.
func (s *Source) Overlays(ctx context.Context, symbol string) (Overlays, error) {
	candles, err := s.Candles(ctx, symbol)
	if err != nil {
		return Overlays{}, err
	}
	return Compute(candles), nil
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return int64(h.Sum64())
}
