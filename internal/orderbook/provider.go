package orderbook

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pickcoin_go/internal/domain"
)

// Kind tags the backing of a Provider.
type Kind int

const (
	KindPull Kind = iota + 1 // REST polling
	KindPush                 // realtime feed
)

func (k Kind) String() string {
	switch k {
	case KindPull:
		return "PULL"
	case KindPush:
		return "PUSH"
	default:
		return "UNKNOWN"
	}
}

// Provider yields the current order book for a market symbol ("BTC_KRW").
type Provider interface {
	Kind() Kind
	Snapshot(symbol string) (domain.OrderBookSnapshot, bool)
}

// BookReader is the read side of the realtime view state.
type BookReader interface {
	OrderBook() (domain.OrderBookSnapshot, bool)
	Connected() bool
}

// PushProvider serves the book last pushed over the realtime feed.
type PushProvider struct {
	reader BookReader
}

// NewPushProvider wraps the realtime state reader.
func NewPushProvider(r BookReader) *PushProvider {
	return &PushProvider{reader: r}
}

func (p *PushProvider) Kind() Kind { return KindPush }

// Snapshot returns the pushed book when it belongs to symbol.
func (p *PushProvider) Snapshot(symbol string) (domain.OrderBookSnapshot, bool) {
	snap, ok := p.reader.OrderBook()
	if !ok || snap.Symbol != symbol {
		return domain.OrderBookSnapshot{}, false
	}
	return snap, true
}

// Available reports whether the feed is connected.
func (p *PushProvider) Available() bool {
	return p.reader.Connected()
}

// BookFetcher loads a book over REST.
type BookFetcher interface {
	OrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error)
}

// PullProvider polls the REST order-book endpoint for one symbol at a time.
type PullProvider struct {
	fetcher  BookFetcher
	interval time.Duration

	mu     sync.RWMutex
	symbol string
	books  map[string]domain.OrderBookSnapshot

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPullProvider creates a poller. interval <= 0 uses 3s.
func NewPullProvider(fetcher BookFetcher, interval time.Duration) *PullProvider {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &PullProvider{
		fetcher:  fetcher,
		interval: interval,
		books:    make(map[string]domain.OrderBookSnapshot),
	}
}

func (p *PullProvider) Kind() Kind { return KindPull }

// Snapshot returns the last polled book for symbol.
func (p *PullProvider) Snapshot(symbol string) (domain.OrderBookSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap, ok := p.books[symbol]
	if !ok {
		return domain.OrderBookSnapshot{}, false
	}
	return snap.Clone(), true
}

// SetSymbol switches the polled market. The next tick fetches it.
func (p *PullProvider) SetSymbol(symbol string) {
	p.mu.Lock()
	p.symbol = symbol
	p.mu.Unlock()
}

// Start fetches immediately and then on every interval until Stop.
func (p *PullProvider) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Order book polling panic recovered", slog.Any("panic", r))
			}
		}()

		p.poll(ctx)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop cancels polling and waits for the loop to exit.
func (p *PullProvider) Stop() {
	if p.cancel != nil {
		p.cancel()
		p.wg.Wait()
	}
}

// poll fetches the current symbol once.
func (p *PullProvider) poll(ctx context.Context) {
	p.mu.RLock()
	symbol := p.symbol
	p.mu.RUnlock()
	if symbol == "" {
		return
	}

	snap, err := p.fetcher.OrderBook(ctx, symbol)
	if err != nil {
		// Keep the last known book.
		if ctx.Err() == nil {
			slog.Warn("Order book poll failed", slog.String("symbol", symbol), slog.Any("error", err))
		}
		return
	}
	if snap.Symbol == "" {
		snap.Symbol = symbol
	}

	p.mu.Lock()
	p.books[symbol] = snap.Sanitize()
	p.mu.Unlock()
}

// Selector prefers the push book when the feed is up and has the symbol,
// and falls back to the pull book otherwise.
type Selector struct {
	push *PushProvider
	pull *PullProvider
}

// NewSelector combines both backings. Either may be nil.
func NewSelector(push *PushProvider, pull *PullProvider) *Selector {
	return &Selector{push: push, pull: pull}
}

// Snapshot returns the freshest available book and which backing served it.
func (s *Selector) Snapshot(symbol string) (domain.OrderBookSnapshot, Kind, bool) {
	if s.push != nil && s.push.Available() {
		if snap, ok := s.push.Snapshot(symbol); ok {
			return snap, KindPush, true
		}
	}
	if s.pull != nil {
		if snap, ok := s.pull.Snapshot(symbol); ok {
			return snap, KindPull, true
		}
	}
	return domain.OrderBookSnapshot{Symbol: symbol}, 0, false
}
