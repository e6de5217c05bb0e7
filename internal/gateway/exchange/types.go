package exchange

import (
	"errors"
	"fmt"
	"time"

	"jarvis/internal/types"
)

// ErrOrderRejected marks an order the backend refused without a transport failure.
var ErrOrderRejected = errors.New("order rejected")

type OrderStatus string

const (
	OrderStatusNew      OrderStatus = "NEW"
	OrderStatusFilled   OrderStatus = "FILLED"
	OrderStatusCanceled OrderStatus = "CANCELED"
)

type OrderRequest struct {
	Side     types.Side
	Quantity float64
	Price    float64
	ClientID string
}

func (r OrderRequest) Validate() error {
	if r.Side != types.Buy && r.Side != types.Sell {
		return fmt.Errorf("invalid side %q: %w", r.Side, ErrOrderRejected)
	}
	if r.Quantity <= 0 || r.Price <= 0 {
		return fmt.Errorf("quantity and price must be positive (qty=%v price=%v): %w", r.Quantity, r.Price, ErrOrderRejected)
	}
	return nil
}

type Order struct {
	ID        string      `json:"id"`
	ClientID  string      `json:"client_id,omitempty"`
	Symbol    string      `json:"symbol"`
	Side      types.Side  `json:"side"`
	Quantity  float64     `json:"quantity"`
	Price     float64     `json:"price"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
