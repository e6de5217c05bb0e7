package market

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned when the venue answered but an input needed for a
// snapshot (top of book, candles) was empty.
var ErrNoData = errors.New("market: no data")

// Snapshot is the per-cycle view of the market the decision engine works on.
// A Snapshot is only ever produced whole; partial data is an error.
type Snapshot struct {
	Mid           float64
	Spread        float64
	Sigma         float64
	BookImbalance float64
	FlowImbalance float64
	At            time.Time
}

// Source acquires a fresh Snapshot. Implementations talk to the exchange.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context) (Snapshot, error)

func (f SourceFunc) Snapshot(ctx context.Context) (Snapshot, error) { return f(ctx) }
