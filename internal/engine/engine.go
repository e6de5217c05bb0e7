// Package engine runs the decision cycle: fetch, score, gate, step, record.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"jarvis/internal/decision"
	"jarvis/internal/gateway/exchange"
	"jarvis/internal/logger"
	"jarvis/internal/market"
	"jarvis/internal/metrics"
	"jarvis/internal/position"
	"jarvis/internal/risk"
	"jarvis/internal/scheduler"
	"jarvis/internal/signal"
)

type Options struct {
	Interval       time.Duration
	RunImmediately bool
	OrderTimeout   time.Duration
}

// Engine is driven by a single goroutine. Risk and position state are only
// touched from RunCycle.
type Engine struct {
	opts     Options
	source   market.Source
	exec     exchange.Executor
	gate     *risk.Gate
	machine  *position.Machine
	recorder *decision.Recorder
	metrics  *metrics.Metrics

	startEquity float64
	nowFn       func() time.Time
}

func New(opts Options, source market.Source, exec exchange.Executor, gate *risk.Gate,
	machine *position.Machine, recorder *decision.Recorder, m *metrics.Metrics) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	return &Engine{
		opts:     opts,
		source:   source,
		exec:     exec,
		gate:     gate,
		machine:  machine,
		recorder: recorder,
		metrics:  m,
		nowFn:    time.Now,
	}
}

func (e *Engine) StartEquity() float64 { return e.startEquity }

// Init syncs the venue clock where needed, captures the starting equity and
// adopts any position the backend already holds. Errors here are fatal to
// startup, except a failed clock sync which only warns.
func (e *Engine) Init(ctx context.Context) error {
	if syncer, ok := e.exec.(exchange.ClockSyncer); ok {
		if err := syncer.SyncTime(ctx); err != nil {
			logger.Warnf("engine: %s clock sync failed: %v", e.exec.Name(), err)
		}
	}
	bal, err := e.exec.FetchBalance(ctx)
	if err != nil {
		return fmt.Errorf("fetch start equity: %w", err)
	}
	if bal.Total <= 0 {
		return fmt.Errorf("start equity must be positive, got %v", bal.Total)
	}
	e.startEquity = bal.Total
	if e.metrics != nil {
		e.metrics.SetStartEquity(bal.Total)
	}
	pos, err := e.exec.GetPosition(ctx)
	if err != nil {
		return fmt.Errorf("fetch open position: %w", err)
	}
	e.machine.Adopt(pos)
	logger.Infof("engine: start equity %.2f %s via %s, state=%s", bal.Total, bal.Currency, e.exec.Name(), e.machine.State())
	return nil
}

// Run cycles until ctx is cancelled. Init must have succeeded.
func (e *Engine) Run(ctx context.Context) error {
	if e.startEquity <= 0 {
		return fmt.Errorf("engine not initialised")
	}
	sched := scheduler.NewIntervalScheduler(ctx, "engine", e.opts.Interval)
	sched.RunImmediately = e.opts.RunImmediately
	sched.Start(func() { e.SafeCycle(ctx) })
	return nil
}

// SafeCycle runs one cycle and recovers any panic so the loop survives.
func (e *Engine) SafeCycle(ctx context.Context) {
	start := e.nowFn()
	result := metrics.CyclePanic
	defer func() {
		if p := recover(); p != nil {
			logger.Errorf("engine: cycle panic: %v\n%s", p, debug.Stack())
		}
		if e.metrics != nil {
			e.metrics.ObserveCycle(result, e.nowFn().Sub(start))
		}
	}()
	result = e.RunCycle(ctx)
}

// RunCycle performs one decision cycle and returns its result label. The
// machine is reconciled with the venue position before anything is decided.
func (e *Engine) RunCycle(ctx context.Context) string {
	if n, err := e.exec.CancelStaleOrders(ctx, e.opts.OrderTimeout); err != nil {
		logger.Warnf("engine: cancel stale orders: %v", err)
	} else if n > 0 {
		logger.Infof("engine: cancelled %d stale orders", n)
	}
	venuePos, err := e.exec.GetPosition(ctx)
	if err != nil {
		logger.Warnf("Position fetch failed. Skipping cycle. (%v)", err)
		return metrics.CycleSkipped
	}
	e.machine.Reconcile(venuePos)

	snap, err := e.source.Snapshot(ctx)
	if err != nil {
		logger.Warnf("Data fetch failed. Skipping cycle. (%v)", err)
		return metrics.CycleMarketError
	}
	score := signal.Score(snap.BookImbalance, snap.FlowImbalance)

	bal, err := e.exec.FetchBalance(ctx)
	if err != nil {
		logger.Warnf("Balance fetch failed. Skipping cycle. (%v)", err)
		return metrics.CycleSkipped
	}
	snapshotMetrics := decision.Metrics{
		decision.MetricPrice:         snap.Mid,
		decision.MetricSpread:        snap.Spread,
		decision.MetricVolatility:    snap.Sigma,
		decision.MetricScore:         score,
		decision.MetricEquity:        bal.Total,
		decision.MetricBookImbalance: snap.BookImbalance,
		decision.MetricFlowImbalance: snap.FlowImbalance,
	}
	e.observe(score, snap, bal.Total)

	if !e.gate.EvaluateDrawdown(bal.Total, e.startEquity) {
		snapshotMetrics[decision.MetricStartEquity] = e.startEquity
		e.recorder.Record(decision.TypeRiskLocked, decision.ReasonDailyDrawdownLimit, snapshotMetrics)
		logger.Criticalf("Global Risk Stop Triggered.")
		e.observeState()
		return metrics.CycleLocked
	}

	e.heartbeat(snap.Mid, score)
	out := e.machine.Step(ctx, position.Input{
		Snapshot: snap,
		Score:    score,
		Equity:   bal.Total,
		Metrics:  snapshotMetrics,
	})
	if out.Emit {
		e.recorder.Record(out.Type, out.Reason, out.Metrics)
	}
	e.observeState()
	return metrics.CycleOK
}

func (e *Engine) heartbeat(mid, score float64) {
	pos := 0.0
	if p, ok := e.machine.Position(); ok {
		pos = p.Quantity * p.Direction.Sign()
	}
	raw, _ := json.Marshal(map[string]any{
		"ts":    e.nowFn().UTC().Format(time.RFC3339Nano),
		"mid":   mid,
		"score": score,
		"pos":   pos,
	})
	logger.Infof("Heartbeat: %s", raw)
}

func (e *Engine) observe(score float64, snap market.Snapshot, equity float64) {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveMarket(score, snap.Spread, snap.Sigma, equity)
}

func (e *Engine) observeState() {
	if e.metrics == nil {
		return
	}
	e.metrics.ObserveRisk(e.gate.State())
	e.metrics.ObservePosition(string(e.machine.State()))
}
