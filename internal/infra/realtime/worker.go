// Package realtime ingests the backend's ticker/orderbook WebSocket feed
// and forwards it to the engine inbox.
package realtime

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/event"
	"pickcoin_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

var pingMessage = []byte(`{"type":"ping"}`)

// Worker handles the realtime connection using BaseWSWorker.
type Worker struct {
	base  *infra.BaseWSWorker
	url   string
	inbox chan<- event.Event
	seq   atomic.Uint64

	malformed atomic.Uint64
}

// NewWorker creates a feed worker for url that emits into inbox.
func NewWorker(url string, inbox chan<- event.Event) *Worker {
	w := &Worker{
		url:   url,
		inbox: inbox,
	}
	w.base = infra.NewBaseWSWorker(w)
	return w
}

// Configure applies heartbeat, read timeout and reconnect policy from cfg.
func (w *Worker) Configure(cfg *infra.Config) {
	w.base.PingInterval = time.Duration(cfg.Realtime.PingIntervalMS) * time.Millisecond
	w.base.ReadTimeout = time.Duration(cfg.Realtime.ReadTimeoutSec) * time.Second
	w.base.Reconnect = infra.ReconnectPolicy(cfg)
}

// Base exposes the underlying connection worker for tuning.
func (w *Worker) Base() *infra.BaseWSWorker { return w.base }

// ID returns the worker identifier.
func (w *Worker) ID() string { return "REALTIME" }

// GetURL returns the feed endpoint.
func (w *Worker) GetURL() string { return w.url }

// Start begins connecting in the background.
func (w *Worker) Start(ctx context.Context) {
	w.base.Start(ctx)
}

// Stop closes the socket and cancels pending timers. Nothing reaches the
// inbox after Stop returns.
func (w *Worker) Stop() {
	w.base.Stop()
}

// Malformed returns how many frames failed to parse.
func (w *Worker) Malformed() uint64 {
	return w.malformed.Load()
}

// OnConnect is a no-op: the feed streams every symbol without a subscription.
func (w *Worker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	return nil
}

// OnPing sends the application-level heartbeat.
func (w *Worker) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return w.base.Write(websocket.TextMessage, pingMessage)
}

// OnStateChange forwards connection transitions to the engine.
func (w *Worker) OnStateChange(ctx context.Context, state domain.ConnState) {
	slog.Debug("Realtime state", slog.String("state", state.String()))
	ev := &event.ConnStateEvent{State: state}
	ev.Seq = w.seq.Add(1)
	ev.Ts = time.Now().UnixMilli()
	w.emit(ctx, ev)
}

// OnMessage dispatches one frame by its "type".
func (w *Worker) OnMessage(ctx context.Context, msg []byte) {
	if !gjson.ValidBytes(msg) {
		w.malformed.Add(1)
		slog.Warn("Realtime message dropped", slog.String("reason", "invalid json"), slog.Int("bytes", len(msg)))
		return
	}
	root := gjson.ParseBytes(msg)

	switch typ := root.Get("type").String(); typ {
	case TypeTicker:
		t, err := parseTicker(root)
		if err != nil {
			if err != errNotDaily {
				slog.Debug("Ticker ignored", slog.Any("error", err))
			}
			return
		}
		ev := event.AcquireTickerEvent()
		ev.Seq = w.seq.Add(1)
		ev.Ts = t.Timestamp
		ev.Ticker = t
		if !w.emit(ctx, ev) {
			event.ReleaseTickerEvent(ev)
		}

	case TypeOrderBook:
		snap, err := parseOrderBook(root)
		if err != nil {
			slog.Debug("Order book ignored", slog.Any("error", err))
			return
		}
		ev := &event.OrderBookEvent{Book: snap}
		ev.Seq = w.seq.Add(1)
		ev.Ts = time.Now().UnixMilli()
		w.emit(ctx, ev)

	case TypePong:
	default:
		slog.Debug("Unknown realtime message", slog.String("type", typ))
	}
}

// emit delivers ev unless the worker is being torn down.
func (w *Worker) emit(ctx context.Context, ev event.Event) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case w.inbox <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
