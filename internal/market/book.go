package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type BookLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook holds bids best-first (descending) and asks best-first (ascending).
type OrderBook struct {
	Bids []BookLevel
	Asks []BookLevel
}

// Top returns the best bid and ask.
func (b OrderBook) Top() (bid, ask float64, err error) {
	if len(b.Bids) == 0 || len(b.Asks) == 0 {
		return 0, 0, fmt.Errorf("empty order book side: %w", ErrNoData)
	}
	bid = b.Bids[0].Price.InexactFloat64()
	ask = b.Asks[0].Price.InexactFloat64()
	if bid <= 0 || ask <= 0 || ask < bid {
		return 0, 0, fmt.Errorf("invalid top of book bid=%v ask=%v", bid, ask)
	}
	return bid, ask, nil
}

// MidAndSpread returns (bid+ask)/2 and the relative spread (ask-bid)/mid.
func (b OrderBook) MidAndSpread() (mid, spread float64, err error) {
	bid, ask, err := b.Top()
	if err != nil {
		return 0, 0, err
	}
	mid = (bid + ask) / 2
	return mid, (ask - bid) / mid, nil
}

// Imbalance is (Σbid qty - Σask qty) / (Σbid qty + Σask qty) over the
// levels held, 0 when the book is empty.
func (b OrderBook) Imbalance() float64 {
	bidVol := sumQty(b.Bids)
	askVol := sumQty(b.Asks)
	return imbalance(bidVol, askVol)
}

func sumQty(levels []BookLevel) decimal.Decimal {
	total := decimal.Zero
	for _, lvl := range levels {
		total = total.Add(lvl.Quantity)
	}
	return total
}

func imbalance(pos, neg decimal.Decimal) float64 {
	total := pos.Add(neg)
	if total.IsZero() {
		return 0
	}
	return pos.Sub(neg).Div(total).InexactFloat64()
}
