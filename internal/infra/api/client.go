// Package api is the REST client for the backend endpoints the trading
// view consumes: coin list, order book, asset lookup and market trades.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pickcoin_go/internal/domain"
	"pickcoin_go/internal/infra"
	"pickcoin_go/internal/infra/realtime"

	"github.com/tidwall/gjson"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client calls the backend REST API. Every call passes the rate limiter
// and the circuit breaker; only transport errors and 5xx responses count
// as breaker failures.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *infra.CircuitBreaker
	limiter    *infra.RateLimiter
}

// NewClient builds a client from the api section of cfg.
func NewClient(cfg *infra.Config) *Client {
	return New(
		cfg.API.BaseURL,
		time.Duration(cfg.API.TimeoutSec)*time.Second,
		infra.NewCircuitBreaker(infra.DefaultCircuitBreakerConfig("backend-api")),
		infra.NewAPIRateLimiter(cfg),
	)
}

// New creates a client with explicit collaborators. breaker and limiter may be nil.
func New(baseURL string, timeout time.Duration, breaker *infra.CircuitBreaker, limiter *infra.RateLimiter) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breaker,
		limiter:    limiter,
	}
}

// Degraded reports whether the breaker is currently rejecting calls.
func (c *Client) Degraded() bool {
	return c.breaker != nil && c.breaker.State() == infra.BreakerOpen
}

// Coins lists every tradable coin.
func (c *Client) Coins(ctx context.Context) ([]domain.CoinInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/coins", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch coins: %w", err)
	}

	var coins []domain.CoinInfo
	if err := json.Unmarshal([]byte(unwrap(body).Raw), &coins); err != nil {
		return nil, fmt.Errorf("decode coins: %w", err)
	}
	return coins, nil
}

// Coin fetches one coin by symbol ("BTC").
func (c *Client) Coin(ctx context.Context, symbol string) (domain.CoinInfo, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/coin/"+url.PathEscape(symbol), nil)
	if err != nil {
		return domain.CoinInfo{}, fmt.Errorf("fetch coin %s: %w", symbol, err)
	}

	var coin domain.CoinInfo
	if err := json.Unmarshal([]byte(unwrap(body).Raw), &coin); err != nil {
		return domain.CoinInfo{}, fmt.Errorf("decode coin %s: %w", symbol, err)
	}
	if coin.Symbol == "" {
		coin.Symbol = symbol
	}
	return coin, nil
}

// OrderBook fetches the book for a market symbol ("BTC_KRW").
func (c *Client) OrderBook(ctx context.Context, symbol string) (domain.OrderBookSnapshot, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/orderbook/"+url.PathEscape(symbol), nil)
	if err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("fetch orderbook %s: %w", symbol, err)
	}

	b := realtime.Body(unwrap(body))
	snap := domain.OrderBookSnapshot{
		Symbol: symbol,
		Bids:   realtime.ParseLevels(b.Get("bids")),
		Asks:   realtime.ParseLevels(b.Get("asks")),
	}
	if ts, ok := realtime.Numeric(b.Get("timestamp")); ok {
		v := int64(ts)
		snap.Timestamp = &v
	}
	return snap, nil
}

// AssetID resolves the backend asset id for a coin symbol.
func (c *Client) AssetID(ctx context.Context, symbol string) (int64, error) {
	path := "/api/Market_assets/asset-id?asset_symbol=" + url.QueryEscape(symbol)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch asset id %s: %w", symbol, err)
	}

	r := unwrap(body)
	for _, key := range []string{"", "asset_id", "assetId", "id"} {
		v := r
		if key != "" {
			v = r.Get(key)
		}
		if id, ok := realtime.Numeric(v); ok && id > 0 {
			return int64(id), nil
		}
	}
	return 0, fmt.Errorf("asset id %s: unexpected response %s", symbol, truncate(string(body)))
}

// MarketBuy places a market buy.
func (c *Client) MarketBuy(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	return c.trade(ctx, "/api/trade/market_buy", req)
}

// MarketSell places a market sell.
func (c *Client) MarketSell(ctx context.Context, req domain.TradeRequest) (domain.TradeResult, error) {
	return c.trade(ctx, "/api/trade/market_sell", req)
}

type tradePayload struct {
	UserID  int64       `json:"user_id"`
	AssetID int64       `json:"asset_id"`
	Amount  json.Number `json:"amount"`
	Price   json.Number `json:"price"`
}

func (c *Client) trade(ctx context.Context, path string, req domain.TradeRequest) (domain.TradeResult, error) {
	payload, err := json.Marshal(tradePayload{
		UserID:  req.UserID,
		AssetID: req.AssetID,
		Amount:  json.Number(req.Amount.String()),
		Price:   json.Number(req.Price.String()),
	})
	if err != nil {
		return domain.TradeResult{}, err
	}

	body, err := c.do(ctx, http.MethodPost, path, payload)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code < 500 {
			return domain.TradeResult{Message: se.Body}, fmt.Errorf("%s: %w: %s", path, domain.ErrTradeRejected, se.Body)
		}
		return domain.TradeResult{}, fmt.Errorf("%s: %w", path, err)
	}

	r := gjson.ParseBytes(body)
	res := domain.TradeResult{
		Success: true,
		Message: r.Get("message").String(),
		TradeID: r.Get("trade_id").Int(),
	}
	if s := r.Get("success"); s.Exists() {
		res.Success = s.Bool()
	}
	if !res.Success {
		return res, fmt.Errorf("%s: %w: %s", path, domain.ErrTradeRejected, res.Message)
	}
	return res, nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body []byte
	var clientErr error
	call := func() error {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", infra.GetUserAgent())
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return err
		}

		if resp.StatusCode >= 300 {
			se := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: truncate(string(data))}
			if resp.StatusCode >= 500 {
				return se
			}
			// The backend answered; not a health problem.
			clientErr = se
			return nil
		}
		body = data
		return nil
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		slog.Debug("API request failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return nil, err
	}
	if clientErr != nil {
		return nil, clientErr
	}
	return body, nil
}

// unwrap strips a {"data": ...} envelope when present.
func unwrap(body []byte) gjson.Result {
	r := gjson.ParseBytes(body)
	if d := r.Get("data"); r.IsObject() && d.Exists() {
		return d
	}
	return r
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
