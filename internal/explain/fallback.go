package explain

import (
	"fmt"
	"math"

	"jarvis/internal/decision"
	"jarvis/internal/risk"
)

// Fallback renders a deterministic explanation without a model.
func Fallback(rec decision.Record) string {
	m := rec.Metrics
	switch rec.Type {
	case decision.TypeTradeSkipped:
		switch rec.Reason {
		case string(risk.ReasonSpreadTooHigh):
			return fmt.Sprintf("Trade skipped: Spread (%.4f) > Limit.", metricFloat(m, decision.MetricSpread))
		case decision.ReasonWeakSignal:
			return fmt.Sprintf("Trade skipped: Signal strength (%.2f) is below threshold.", math.Abs(metricFloat(m, decision.MetricScore)))
		case decision.ReasonRiskConstraint:
			return "Trade skipped: General risk constraint violation."
		}
	case decision.TypeRiskLocked:
		return fmt.Sprintf("CRITICAL: System locked due to %s. Intervention required.", rec.Reason)
	case decision.TypeTradeExecuted:
		return fmt.Sprintf("Executed %s. Volatility: %.4f.", rec.Reason, metricFloat(m, decision.MetricVolatility))
	}
	return fmt.Sprintf("Event: %s | Reason: %s", rec.Type, rec.Reason)
}

func metricFloat(m decision.Metrics, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
