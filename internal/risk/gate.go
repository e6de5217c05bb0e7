// Package risk holds the drawdown latch, loss-streak lockout, spread gate and
// the sizing and stop formulas. A Gate is owned by the single cycle
// goroutine and is not safe for concurrent mutation.
package risk

import (
	"fmt"

	"jarvis/internal/logger"
)

// Reason explains why CanEnter refused a new position.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonRiskLocked           Reason = "RISK_LOCKED"
	ReasonMaxConsecutiveLosses Reason = "MAX_CONSECUTIVE_LOSSES"
	ReasonSpreadTooHigh        Reason = "SPREAD_TOO_HIGH"
)

// State is a read-only copy of the gate's mutable state.
type State struct {
	Active            bool
	ConsecutiveLosses int
	DailyPnL          float64
}

type Gate struct {
	params Params
	state  State
}

func NewGate(p Params) *Gate {
	return &Gate{params: p, state: State{Active: true}}
}

func (g *Gate) Params() Params { return g.params }

func (g *Gate) State() State { return g.state }

func (g *Gate) Active() bool { return g.state.Active }

// RecordTradeOutcome books a closed trade. A loss extends the streak; a
// breakeven or winning trade resets it.
func (g *Gate) RecordTradeOutcome(pnl float64) {
	g.state.DailyPnL += pnl
	if pnl < 0 {
		g.state.ConsecutiveLosses++
	} else {
		g.state.ConsecutiveLosses = 0
	}
	logger.Infof("risk: trade outcome pnl=%.4f daily_pnl=%.4f losses=%d",
		pnl, g.state.DailyPnL, g.state.ConsecutiveLosses)
}

// EvaluateDrawdown reports whether trading may continue given current and
// starting equity. Once the drawdown limit is breached the gate latches
// inactive and every later call returns false.
func (g *Gate) EvaluateDrawdown(current, start float64) bool {
	if !g.state.Active {
		return false
	}
	if start <= 0 {
		panic(fmt.Sprintf("risk: start equity must be positive, got %v", start))
	}
	dd := (current - start) / start
	if dd <= -g.params.MaxDailyDrawdown {
		g.state.Active = false
		logger.Criticalf("risk: drawdown %.4f breached limit -%.4f (equity %.2f of %.2f), trading latched off",
			dd, g.params.MaxDailyDrawdown, current, start)
		return false
	}
	return true
}

// CanEnter checks, in order, the latch, the loss streak and the spread.
func (g *Gate) CanEnter(spread float64) (bool, Reason) {
	switch {
	case !g.state.Active:
		return false, ReasonRiskLocked
	case g.state.ConsecutiveLosses >= g.params.MaxConsecutiveLosses:
		return false, ReasonMaxConsecutiveLosses
	case spread > g.params.MaxSpread:
		return false, ReasonSpreadTooHigh
	default:
		return true, ReasonNone
	}
}
