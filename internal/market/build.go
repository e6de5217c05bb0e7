package market

import (
	"fmt"
	"time"
)

// Build assembles a Snapshot from raw venue data.
func Build(book OrderBook, trades []Trade, candles []Candle, window int, at time.Time) (Snapshot, error) {
	mid, spread, err := book.MidAndSpread()
	if err != nil {
		return Snapshot{}, err
	}
	if len(candles) == 0 {
		return Snapshot{}, fmt.Errorf("no candles: %w", ErrNoData)
	}
	return Snapshot{
		Mid:           mid,
		Spread:        spread,
		Sigma:         RealizedVolatility(Closes(candles), window),
		BookImbalance: book.Imbalance(),
		FlowImbalance: FlowImbalance(trades),
		At:            at.UTC(),
	}, nil
}
