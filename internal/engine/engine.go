package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/event"
)

// Engine is the single writer of the realtime view state.
type Engine struct {
	inbox   chan event.Event
	state   State
	nextSeq uint64

	// Boundary: used to notify the renderer of state changes
	onStateUpdate func(State, event.Type)
	tickerSinks   []TickerSink

	mu sync.RWMutex // Used only for external reads

	dumpPath string
}

// NewEngine creates an engine. onUpdate may be nil.
func NewEngine(inboxSize int, onUpdate func(State, event.Type)) *Engine {
	return &Engine{
		inbox:         make(chan event.Event, inboxSize),
		state:         State{Tickers: make(map[string]domain.TickerUpdate), Conn: domain.ConnClosed},
		nextSeq:       1,
		onStateUpdate: onUpdate,
		dumpPath:      "panic_dump.json",
	}
}

// TickerSink receives every applied ticker with its direction already set,
// e.g. the Redis publisher or the live candle builder. It must not block.
type TickerSink func(domain.TickerUpdate)

// AddTickerSink registers fn for applied tickers. Must be called before Run.
func (e *Engine) AddTickerSink(fn TickerSink) {
	e.tickerSinks = append(e.tickerSinks, fn)
}

// SetDumpPath sets where Run writes the state dump after a panic.
// Must be called before Run.
func (e *Engine) SetDumpPath(path string) {
	e.dumpPath = path
}

// Inbox returns the event channel. External workers send events here.
func (e *Engine) Inbox() chan<- event.Event {
	return e.inbox
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("🧠 Engine started")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			e.DumpState(e.dumpPath)
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Engine stopping...")
			return
		case ev := <-e.inbox:
			e.Apply(ev)
		}
	}
}

// Apply reduces one event synchronously. Run calls it for every inbox
// event; tests and one-shot tools may call it directly from the owning
// goroutine.
func (e *Engine) Apply(ev event.Event) {
	next, changed := Reduce(e.state, ev)
	typ := ev.GetType()

	var tickerSymbol string
	if te, ok := ev.(*event.TickerEvent); ok {
		tickerSymbol = te.Ticker.Symbol
		event.ReleaseTickerEvent(te)
	}

	e.mu.Lock()
	e.nextSeq++
	if changed {
		e.state = next
	}
	e.mu.Unlock()

	if !changed {
		slog.Debug("Event ignored", slog.String("type", typ.String()))
		return
	}

	if typ == event.EvTicker {
		t := next.Tickers[tickerSymbol]
		for _, sink := range e.tickerSinks {
			sink(t)
		}
	}
	if e.onStateUpdate != nil {
		e.onStateUpdate(next, typ)
	}
}

// Applied returns the number of events processed so far.
func (e *Engine) Applied() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.nextSeq - 1
}

// State returns a deep copy of the current state (external read).
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Tickers returns a copy of the ticker map.
func (e *Engine) Tickers() map[string]domain.TickerUpdate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]domain.TickerUpdate, len(e.state.Tickers))
	for k, v := range e.state.Tickers {
		out[k] = v
	}
	return out
}

// Ticker returns the latest ticker for a market symbol ("BTC_KRW").
func (e *Engine) Ticker(symbol string) (domain.TickerUpdate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	t, ok := e.state.Tickers[symbol]
	return t, ok
}

// OrderBook returns a copy of the selected symbol's pushed book.
func (e *Engine) OrderBook() (domain.OrderBookSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.state.HasBook {
		return domain.OrderBookSnapshot{}, false
	}
	return e.state.OrderBook.Clone(), true
}

// Connected reports whether the realtime feed is open.
func (e *Engine) Connected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Connected()
}

// Selected returns the tracked coin.
func (e *Engine) Selected() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Selected
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (e *Engine) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		Applied uint64 `json:"applied"`
		State   State  `json:"state"`
	}{
		Applied: e.nextSeq - 1,
		State:   e.state,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
