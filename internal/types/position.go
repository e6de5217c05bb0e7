package types

import "time"

// PositionSnapshot is an execution backend's view of the open position.
type PositionSnapshot struct {
	Symbol        string    `json:"symbol"`
	Direction     Direction `json:"direction"`
	EntryPrice    float64   `json:"entry_price"`
	Quantity      float64   `json:"quantity"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	OpenedAt      time.Time `json:"opened_at"`
}

// PnL is the profit of the position marked at price.
func (p PositionSnapshot) PnL(price float64) float64 {
	return (price - p.EntryPrice) * p.Quantity * p.Direction.Sign()
}

// AccountSnapshot is the equity reported by an execution backend.
type AccountSnapshot struct {
	Total     float64   `json:"total"`
	Available float64   `json:"available"`
	Currency  string    `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}
