package market

import "github.com/shopspring/decimal"

// Trade is one recent public trade, tagged by the aggressor side.
type Trade struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	TakerBuy bool
	Time     int64
}

// FlowImbalance is (taker buy qty - taker sell qty) / total over trades,
// 0 when there is no volume.
func FlowImbalance(trades []Trade) float64 {
	buy, sell := decimal.Zero, decimal.Zero
	for _, t := range trades {
		if t.TakerBuy {
			buy = buy.Add(t.Quantity)
		} else {
			sell = sell.Add(t.Quantity)
		}
	}
	return imbalance(buy, sell)
}
