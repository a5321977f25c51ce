package domain

// CoinInfo is one listed asset as returned by the coin list endpoint.
type CoinInfo struct {
	Symbol   string  `json:"symbol" db:"symbol"` // "BTC"
	Name     string  `json:"name" db:"name"`
	AssetID  int64   `json:"asset_id" db:"asset_id"`
	Price    float64 `json:"price" db:"price"`
	ChgRate  float64 `json:"chg_rate" db:"chg_rate"`
	IsActive bool    `json:"is_active" db:"is_active"`

	UpdatedAtUnixM int64 `json:"updated_at_unix,string" db:"updated_at"` // Unix Micro
}

// MarketSymbol returns the KRW pair for the coin.
func (c CoinInfo) MarketSymbol() string {
	return MarketSymbol(c.Symbol)
}
