// Package storage is the session cache for candles and the coin list.
// It runs on an in-memory SQLite database, so nothing outlives the process.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pickcoin_go/internal/domain"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const memoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS metadata (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS coins (
	symbol TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	asset_id INTEGER NOT NULL DEFAULT 0,
	price REAL NOT NULL DEFAULT 0,
	chg_rate REAL NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	updated_at INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS candles (
	symbol TEXT NOT NULL,
	interval_sec INTEGER NOT NULL,
	time INTEGER NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	PRIMARY KEY (symbol, interval_sec, time)
);
`

// SessionStore caches candles and coins for the lifetime of the process.
type SessionStore struct {
	db *sqlx.DB
}

// NewSessionStore opens an in-memory store.
func NewSessionStore() (*SessionStore, error) {
	return Open(memoryDSN)
}

// Open opens a store on dsn. An empty dsn means in-memory.
func Open(dsn string) (*SessionStore, error) {
	if dsn == "" {
		dsn = memoryDSN
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// Every new connection to :memory: is a fresh database.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA synchronous=OFF;",
		"PRAGMA cache_size=-2000;", // 2MB cache
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SessionStore{db: db}, nil
}

type candleRow struct {
	Symbol   string `db:"symbol"`
	Interval int    `db:"interval_sec"`
	domain.Candle
}

// UpsertCandles stores candles for (symbol, intervalSec), replacing bars
// with the same open time.
func (s *SessionStore) UpsertCandles(ctx context.Context, symbol string, intervalSec int, candles []domain.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO candles (symbol, interval_sec, time, open, high, low, close, volume)
		VALUES (:symbol, :interval_sec, :time, :open, :high, :low, :close, :volume)
		ON CONFLICT(symbol, interval_sec, time) DO UPDATE SET
			open=excluded.open, high=excluded.high, low=excluded.low,
			close=excluded.close, volume=excluded.volume`)
	if err != nil {
		return fmt.Errorf("failed to prepare candle upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, candleRow{Symbol: symbol, Interval: intervalSec, Candle: c}); err != nil {
			return fmt.Errorf("failed to upsert candle %d: %w", c.Time, err)
		}
	}

	return tx.Commit()
}

// Candles returns the latest limit candles in ascending time order.
// limit <= 0 returns all.
func (s *SessionStore) Candles(ctx context.Context, symbol string, intervalSec, limit int) ([]domain.Candle, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	var out []domain.Candle
	err := s.db.SelectContext(ctx, &out, `
		SELECT time, open, high, low, close, volume FROM (
			SELECT time, open, high, low, close, volume FROM candles
			WHERE symbol = ? AND interval_sec = ?
			ORDER BY time DESC LIMIT ?
		) ORDER BY time ASC`, symbol, intervalSec, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query candles: %w", err)
	}
	return out, nil
}

// LastCandle returns the newest candle, if any.
func (s *SessionStore) LastCandle(ctx context.Context, symbol string, intervalSec int) (domain.Candle, bool, error) {
	var c domain.Candle
	err := s.db.GetContext(ctx, &c, `
		SELECT time, open, high, low, close, volume FROM candles
		WHERE symbol = ? AND interval_sec = ?
		ORDER BY time DESC LIMIT 1`, symbol, intervalSec)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Candle{}, false, nil
	}
	if err != nil {
		return domain.Candle{}, false, fmt.Errorf("failed to query last candle: %w", err)
	}
	return c, true, nil
}

// UpsertCoin saves or refreshes one coin.
func (s *SessionStore) UpsertCoin(ctx context.Context, coin domain.CoinInfo) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO coins (symbol, name, asset_id, price, chg_rate, is_active, updated_at)
		VALUES (:symbol, :name, :asset_id, :price, :chg_rate, :is_active, :updated_at)
		ON CONFLICT(symbol) DO UPDATE SET
			name=excluded.name, asset_id=excluded.asset_id, price=excluded.price,
			chg_rate=excluded.chg_rate, is_active=excluded.is_active, updated_at=excluded.updated_at`,
		coin)
	if err != nil {
		return fmt.Errorf("failed to upsert coin %s: %w", coin.Symbol, err)
	}
	return nil
}

// Coins returns every cached coin ordered by symbol.
func (s *SessionStore) Coins(ctx context.Context) ([]domain.CoinInfo, error) {
	var out []domain.CoinInfo
	if err := s.db.SelectContext(ctx, &out, "SELECT * FROM coins ORDER BY symbol"); err != nil {
		return nil, fmt.Errorf("failed to query coins: %w", err)
	}
	return out, nil
}

// Coin returns one cached coin.
func (s *SessionStore) Coin(ctx context.Context, symbol string) (domain.CoinInfo, bool, error) {
	var c domain.CoinInfo
	err := s.db.GetContext(ctx, &c, "SELECT * FROM coins WHERE symbol = ?", symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CoinInfo{}, false, nil
	}
	if err != nil {
		return domain.CoinInfo{}, false, fmt.Errorf("failed to query coin %s: %w", symbol, err)
	}
	return c, true, nil
}

// UpsertMetadata saves a key-value pair to the metadata table.
func (s *SessionStore) UpsertMetadata(ctx context.Context, key, value string, ts int64) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at",
		key, value, ts,
	)
	return err
}

// GetMetadata retrieves a value from the metadata table.
func (s *SessionStore) GetMetadata(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM metadata WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// Close closes the database connection.
func (s *SessionStore) Close() error {
	return s.db.Close()
}
