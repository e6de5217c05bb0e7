package exchange

import (
	"context"
	"time"

	"jarvis/internal/types"
)

// Executor is an order execution backend for a single symbol.
type Executor interface {
	Name() string

	// GetPosition returns the open position or nil when flat.
	GetPosition(ctx context.Context) (*types.PositionSnapshot, error)

	FetchBalance(ctx context.Context) (types.AccountSnapshot, error)

	// PlaceOrder submits a limit order. A nil error means the venue accepted it.
	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)

	// CancelStaleOrders cancels resting orders older than timeout and reports how many.
	CancelStaleOrders(ctx context.Context, timeout time.Duration) (int, error)
}

// ClockSyncer is implemented by venues that sign requests with a local
// timestamp and need the clock offset measured before trading.
type ClockSyncer interface {
	SyncTime(ctx context.Context) error
}
