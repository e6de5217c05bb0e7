// Package decision defines the audit record emitted for every decision the
// engine takes and the recorder that fans it out.
package decision

import (
	"encoding/json"
	"time"
)

type Type string

const (
	TypeTradeExecuted Type = "TRADE_EXECUTED"
	TypeTradeSkipped  Type = "TRADE_SKIPPED"
	TypeRiskLocked    Type = "RISK_LOCKED"
)

// Reason codes beyond the risk gate's own.
const (
	ReasonWeakSignal            = "WEAK_SIGNAL"
	ReasonZeroSize              = "ZERO_SIZE_CALC"
	ReasonOrderSubmissionFailed = "ORDER_SUBMISSION_FAILED"
	ReasonDailyDrawdownLimit    = "DAILY_DRAWDOWN_LIMIT"
	ReasonRiskConstraint        = "RISK_CONSTRAINT"
	ReasonEntryPrefix           = "ENTRY_"
	ReasonExitPrefix            = "EXIT_"
)

// Metric keys shared by the engine, explainer and read API.
const (
	MetricPrice         = "price"
	MetricSpread        = "spread"
	MetricVolatility    = "volatility"
	MetricScore         = "score"
	MetricEquity        = "equity"
	MetricStartEquity   = "start_equity"
	MetricBookImbalance = "imbalance_book"
	MetricFlowImbalance = "imbalance_flow"
	MetricLeverage      = "calculated_leverage"
	MetricQuantity      = "calculated_qty"
	MetricFillPrice     = "fill_price"
	MetricPositionSide  = "position_side"
	MetricPositionPnL   = "position_pnl_pct"
	MetricEntryPrice    = "entry_price"
	MetricStopPrice     = "stop_price"
	MetricExitPrice     = "exit_price"
	MetricRealizedPnL   = "realized_pnl"
	MetricHeldSeconds   = "held_seconds"
	MetricExitReason    = "exit_reason"
	MetricOrderError    = "order_error"
)

type Metrics map[string]any

// Clone returns a shallow copy; metric values are scalars.
func (m Metrics) Clone() Metrics {
	out := make(Metrics, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Record is one line of the event log.
type Record struct {
	TS      time.Time `json:"ts"`
	Type    Type      `json:"type"`
	Reason  string    `json:"reason"`
	Metrics Metrics   `json:"metrics"`
}

// Clone detaches the record from the caller's metrics map.
func (r Record) Clone() Record {
	r.Metrics = r.Metrics.Clone()
	return r
}

func (r Record) JSON() ([]byte, error) {
	if r.Metrics == nil {
		r.Metrics = Metrics{}
	}
	return json.Marshal(r)
}
