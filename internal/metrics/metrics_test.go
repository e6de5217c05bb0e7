package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/decision"
	"jarvis/internal/risk"
)

func TestObserveDecisionCountsByTypeAndReason(t *testing.T) {
	m := New()
	m.ObserveDecision(decision.Record{Type: decision.TypeTradeSkipped, Reason: decision.ReasonWeakSignal})
	m.ObserveDecision(decision.Record{Type: decision.TypeTradeSkipped, Reason: decision.ReasonWeakSignal})
	m.ObserveDecision(decision.Record{Type: decision.TypeTradeExecuted, Reason: "ENTRY_BUY"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.decisions.WithLabelValues("TRADE_SKIPPED", "WEAK_SIGNAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decisions.WithLabelValues("TRADE_EXECUTED", "ENTRY_BUY")))
}

func TestGauges(t *testing.T) {
	m := New()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.riskActive))

	m.ObserveRisk(risk.State{Active: false, ConsecutiveLosses: 2})
	m.ObservePosition("SHORT")
	m.ObserveMarket(0.5, 0.0002, 0.001, 990)
	m.ObserveCycle(CycleOK, 20*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.riskActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.consecutiveLosses))
	assert.Equal(t, -1.0, testutil.ToFloat64(m.position))
	assert.Equal(t, 990.0, testutil.ToFloat64(m.equity))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(CycleOK)))
}

func TestHandlerServesText(t *testing.T) {
	m := New()
	m.SetStartEquity(1000)
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "jarvis_start_equity 1000")
}
