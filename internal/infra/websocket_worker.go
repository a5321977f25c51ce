package infra

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"pickcoin_go/internal/domain"

	"github.com/gorilla/websocket"
)

// WebSocketHandler defines feed-specific logic for the BaseWSWorker.
type WebSocketHandler interface {
	GetURL() string
	OnConnect(ctx context.Context, conn *websocket.Conn) error
	OnMessage(ctx context.Context, msg []byte)
	OnPing(ctx context.Context, conn *websocket.Conn) error
	OnStateChange(ctx context.Context, state domain.ConnState)
	ID() string
}

// BaseWSWorker manages the lifecycle of a WebSocket connection.
// It walks Connecting -> Open -> Closed|Errored -> Connecting, waiting
// Reconnect(retry) between attempts, and serializes writes.
type BaseWSWorker struct {
	handler WebSocketHandler
	mu      sync.RWMutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	ReadTimeout  time.Duration
	PingInterval time.Duration
	Reconnect    ReconnectDelay
}

// NewBaseWSWorker creates a worker with a 30s heartbeat and a fixed 3s reconnect delay.
func NewBaseWSWorker(handler WebSocketHandler) *BaseWSWorker {
	return &BaseWSWorker{
		handler:      handler,
		ReadTimeout:  60 * time.Second,
		PingInterval: 30 * time.Second,
		Reconnect:    FixedDelay(3 * time.Second),
	}
}

// Start initiates the connection loop.
func (w *BaseWSWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.runLoop(ctx)
}

// Stop terminates the worker and waits for every goroutine it started.
// No handler callback runs after Stop returns.
func (w *BaseWSWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.close()
	w.wg.Wait()
}

func (w *BaseWSWorker) runLoop(ctx context.Context) {
	defer w.wg.Done()
	defer w.handler.OnStateChange(ctx, domain.ConnClosed)
	retry := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		w.handler.OnStateChange(ctx, domain.ConnConnecting)
		if err := w.connect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("WS Connection failed", "id", w.handler.ID(), "err", err, "retry", retry)
			w.handler.OnStateChange(ctx, domain.ConnErrored)
		} else {
			retry = 0 // Reset on successful connect
			w.handler.OnStateChange(ctx, domain.ConnOpen)
			if w.process(ctx) {
				w.handler.OnStateChange(ctx, domain.ConnErrored)
			} else {
				w.handler.OnStateChange(ctx, domain.ConnClosed)
			}
		}

		delay := w.Reconnect(retry)
		retry++

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

func (w *BaseWSWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	header := make(http.Header)
	header.Set("User-Agent", GetUserAgent())

	conn, _, err := dialer.DialContext(ctx, w.handler.GetURL(), header)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()

	if err := w.handler.OnConnect(ctx, conn); err != nil {
		w.close()
		return fmt.Errorf("OnConnect failed: %w", err)
	}

	slog.Info("🔌 WS Connected", "id", w.handler.ID())
	return nil
}

// process reads until the connection drops. It reports true when the
// connection ended with an error rather than a normal close or shutdown.
func (w *BaseWSWorker) process(ctx context.Context) bool {
	// Heartbeat is scoped to this connection.
	connCtx, cancelConn := context.WithCancel(ctx)
	var pingWG sync.WaitGroup
	if w.PingInterval > 0 {
		pingWG.Add(1)
		go func() {
			defer pingWG.Done()
			w.pingLoop(connCtx)
		}()
	}
	defer func() {
		cancelConn()
		pingWG.Wait()
	}()

	for {
		w.mu.RLock()
		c := w.conn
		w.mu.RUnlock()
		if c == nil {
			return false
		}

		if w.ReadTimeout > 0 {
			c.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		}
		_, msg, err := c.ReadMessage()
		if err != nil {
			w.close()
			if ctx.Err() != nil {
				return false
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Info("WS Closed by server", "id", w.handler.ID())
				return false
			}
			slog.Warn("WS Read error", "id", w.handler.ID(), "err", err)
			return true
		}

		if ctx.Err() != nil {
			w.close()
			return false
		}
		w.handler.OnMessage(ctx, msg)
	}
}

func (w *BaseWSWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(w.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.mu.RLock()
			c := w.conn
			w.mu.RUnlock()
			if c == nil {
				return
			}
			if err := w.handler.OnPing(ctx, c); err != nil {
				slog.Warn("WS Ping error", "id", w.handler.ID(), "err", err)
				w.close()
				return
			}
		}
	}
}

// Write sends one frame on the current connection.
func (w *BaseWSWorker) Write(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.RLock()
	c := w.conn
	w.mu.RUnlock()

	if c == nil {
		return fmt.Errorf("ws not connected")
	}

	return c.WriteMessage(msgType, data)
}

func (w *BaseWSWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
