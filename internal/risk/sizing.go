package risk

import (
	"math"

	"jarvis/internal/types"
)

// WorstCaseMove is the assumed adverse excursion 2·σ·√H used for sizing.
func (g *Gate) WorstCaseMove(sigma float64) float64 {
	return 2 * sigma * math.Sqrt(float64(g.params.HoldingHorizon))
}

// LeverageCap is the binding minimum of the hard cap, 1/σ and 0.5/spread.
func (g *Gate) LeverageCap(sigma, spread float64) float64 {
	spreadCap := math.Inf(1)
	if spread > 0 {
		spreadCap = 0.5 / spread
	}
	return math.Min(g.params.MaxLeverage, math.Min(1/sigma, spreadCap))
}

// SizePosition returns quantity and effective leverage for a new position.
// A non-positive sigma yields (0, 0).
func (g *Gate) SizePosition(equity, sigma, price, spread float64) (qty, leverage float64) {
	if sigma <= 0 {
		return 0, 0
	}
	notional := g.params.RiskPerTrade * equity / g.WorstCaseMove(sigma)
	final := math.Min(notional, equity*g.LeverageCap(sigma, spread))
	return final / price, final / equity
}

// StopPrice places the stop StopMultiplier·σ·√H away from entry, below for
// longs and above for shorts.
func (g *Gate) StopPrice(entry float64, dir types.Direction, sigma float64) float64 {
	offset := g.params.StopMultiplier * sigma * math.Sqrt(float64(g.params.HoldingHorizon))
	if dir == types.Short {
		return entry * (1 + offset)
	}
	return entry * (1 - offset)
}
