// Package metrics exposes engine counters and gauges to Prometheus.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jarvis/internal/decision"
	"jarvis/internal/risk"
)

// Cycle results.
const (
	CycleOK          = "ok"
	CycleSkipped     = "skipped"
	CycleLocked      = "locked"
	CyclePanic       = "panic"
	CycleMarketError = "market_error"
)

// Metrics owns its registry so tests and multiple engines never collide.
type Metrics struct {
	registry *prometheus.Registry

	cycles            *prometheus.CounterVec
	cycleDuration     prometheus.Histogram
	decisions         *prometheus.CounterVec
	equity            prometheus.Gauge
	startEquity       prometheus.Gauge
	position          prometheus.Gauge
	riskActive        prometheus.Gauge
	consecutiveLosses prometheus.Gauge
	score             prometheus.Gauge
	spread            prometheus.Gauge
	volatility        prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jarvis_cycles_total",
			Help: "Decision cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "jarvis_cycle_duration_seconds",
			Help:    "Wall time of one decision cycle.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jarvis_decisions_total",
			Help: "Decision records by type and reason.",
		}, []string{"type", "reason"}),
		equity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_equity",
			Help: "Last observed account equity.",
		}),
		startEquity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_start_equity",
			Help: "Equity captured at startup.",
		}),
		position: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_position",
			Help: "Position direction: 1 long, -1 short, 0 flat.",
		}),
		riskActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_risk_active",
			Help: "1 while the risk gate allows trading, 0 once latched.",
		}),
		consecutiveLosses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_consecutive_losses",
			Help: "Current losing trade streak.",
		}),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_signal_score",
			Help: "Last direction score in [-1,1].",
		}),
		spread: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_spread",
			Help: "Last relative bid/ask spread.",
		}),
		volatility: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jarvis_volatility",
			Help: "Last realized volatility per candle.",
		}),
	}
	m.registry.MustRegister(
		m.cycles, m.cycleDuration, m.decisions,
		m.equity, m.startEquity, m.position,
		m.riskActive, m.consecutiveLosses,
		m.score, m.spread, m.volatility,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.riskActive.Set(1)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveCycle(result string, took time.Duration) {
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(took.Seconds())
}

// ObserveDecision implements decision.Observer.
func (m *Metrics) ObserveDecision(rec decision.Record) {
	m.decisions.WithLabelValues(string(rec.Type), rec.Reason).Inc()
}

func (m *Metrics) SetStartEquity(v float64) { m.startEquity.Set(v) }

// ObserveMarket records the inputs of the last completed cycle.
func (m *Metrics) ObserveMarket(score, spread, sigma, equity float64) {
	m.score.Set(score)
	m.spread.Set(spread)
	m.volatility.Set(sigma)
	m.equity.Set(equity)
}

func (m *Metrics) ObserveRisk(st risk.State) {
	if st.Active {
		m.riskActive.Set(1)
	} else {
		m.riskActive.Set(0)
	}
	m.consecutiveLosses.Set(float64(st.ConsecutiveLosses))
}

// ObservePosition takes the machine state name (FLAT, LONG, SHORT).
func (m *Metrics) ObservePosition(state string) {
	switch strings.ToUpper(state) {
	case "LONG":
		m.position.Set(1)
	case "SHORT":
		m.position.Set(-1)
	default:
		m.position.Set(0)
	}
}
