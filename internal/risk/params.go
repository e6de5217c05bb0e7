package risk

// Params are the hard risk constraints. They are fixed for the life of a Gate.
type Params struct {
	RiskPerTrade         float64
	MaxDailyDrawdown     float64
	MaxConsecutiveLosses int
	MaxLeverage          float64
	HoldingHorizon       int
	MaxSpread            float64
	StopMultiplier       float64
}

func DefaultParams() Params {
	return Params{
		RiskPerTrade:         0.005,
		MaxDailyDrawdown:     0.02,
		MaxConsecutiveLosses: 3,
		MaxLeverage:          5.0,
		HoldingHorizon:       240,
		MaxSpread:            0.001,
		StopMultiplier:       2.0,
	}
}
