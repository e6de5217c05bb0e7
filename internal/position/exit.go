package position

// ExitReason names why an open position is closed. When several triggers
// fire in the same cycle the one with the highest value wins.
type ExitReason int

const (
	ExitNone ExitReason = iota
	ExitSignalReversal
	ExitVolatilityStop
	ExitTimeStop
)

func (r ExitReason) String() string {
	switch r {
	case ExitSignalReversal:
		return "SIGNAL_REVERSAL"
	case ExitVolatilityStop:
		return "VOLATILITY_STOP"
	case ExitTimeStop:
		return "TIME_STOP"
	default:
		return "NONE"
	}
}

// ExitChecks is the outcome of every exit trigger for one cycle.
type ExitChecks struct {
	SignalReversal bool
	VolatilityStop bool
	TimeStop       bool
}

// Reason picks the winning trigger.
func (c ExitChecks) Reason() ExitReason {
	switch {
	case c.TimeStop:
		return ExitTimeStop
	case c.VolatilityStop:
		return ExitVolatilityStop
	case c.SignalReversal:
		return ExitSignalReversal
	default:
		return ExitNone
	}
}
