// Package position owns the single open-position slot and decides, once per
// cycle, whether to enter, hold or exit.
package position

import (
	"context"
	"fmt"
	"math"
	"time"

	"jarvis/internal/decision"
	"jarvis/internal/gateway/exchange"
	"jarvis/internal/logger"
	"jarvis/internal/market"
	"jarvis/internal/pkg/text"
	"jarvis/internal/risk"
	"jarvis/internal/types"
)

// maxOrderErrorLen bounds venue error text copied into a record.
const maxOrderErrorLen = 200

type State string

const (
	StateFlat  State = "FLAT"
	StateLong  State = "LONG"
	StateShort State = "SHORT"
)

// Position is the machine's record of the open position.
type Position struct {
	Direction  types.Direction
	EntryPrice float64
	Quantity   float64
	OpenedAt   time.Time
}

// UnrealizedPct is the signed return of the position marked at price.
func (p Position) UnrealizedPct(price float64) float64 {
	return (price - p.EntryPrice) / p.EntryPrice * p.Direction.Sign()
}

type Params struct {
	EntryThreshold    float64
	ReversalThreshold float64
	// MaxHold is how long a non-profitable position may stay open.
	MaxHold time.Duration
	// PendingTimeout is how long an unfilled order may rest before the
	// stale-order sweep cancels it.
	PendingTimeout time.Duration
}

func DefaultParams() Params {
	return Params{
		EntryThreshold:    0.4,
		ReversalThreshold: 0.1,
		MaxHold:           60 * time.Minute,
		PendingTimeout:    30 * time.Second,
	}
}

// Input is everything a single step needs.
type Input struct {
	Snapshot market.Snapshot
	Score    float64
	Equity   float64
	Metrics  decision.Metrics
}

// Outcome is what a step decided. Emit is false when holding.
type Outcome struct {
	Emit    bool
	Type    decision.Type
	Reason  string
	Metrics decision.Metrics
}

func emit(typ decision.Type, reason string, m decision.Metrics) Outcome {
	return Outcome{Emit: true, Type: typ, Reason: reason, Metrics: m}
}

// Machine is driven by one goroutine and is not safe for concurrent use.
type Machine struct {
	params Params
	gate   *risk.Gate
	exec   exchange.Executor
	pos    *Position
	// pending is an accepted order the venue has not filled yet.
	pending *pendingOrder

	nowFn func() time.Time
}

type pendingOrder struct {
	exit     bool
	order    exchange.Order
	placedAt time.Time
}

func NewMachine(p Params, gate *risk.Gate, exec exchange.Executor) *Machine {
	if p.PendingTimeout <= 0 {
		p.PendingTimeout = DefaultParams().PendingTimeout
	}
	return &Machine{params: p, gate: gate, exec: exec, nowFn: time.Now}
}

// SetClock overrides the wall clock used for OpenedAt and the time stop.
func (m *Machine) SetClock(now func() time.Time) {
	if now != nil {
		m.nowFn = now
	}
}

func (m *Machine) State() State {
	if m.pos == nil {
		return StateFlat
	}
	if m.pos.Direction == types.Short {
		return StateShort
	}
	return StateLong
}

// Position returns a copy of the open position, if any.
func (m *Machine) Position() (Position, bool) {
	if m.pos == nil {
		return Position{}, false
	}
	return *m.pos, true
}

// Pending reports whether an accepted order is still waiting for a fill.
func (m *Machine) Pending() bool { return m.pending != nil }

// Adopt takes over a position found on the execution backend.
func (m *Machine) Adopt(snap *types.PositionSnapshot) {
	if snap == nil || snap.Quantity <= 0 || snap.EntryPrice <= 0 {
		return
	}
	opened := snap.OpenedAt
	if opened.IsZero() {
		opened = m.nowFn().UTC()
	}
	m.pos = &Position{
		Direction:  snap.Direction,
		EntryPrice: snap.EntryPrice,
		Quantity:   snap.Quantity,
		OpenedAt:   opened,
	}
	logger.Warnf("position: adopted existing %s qty=%.6f entry=%.4f", snap.Direction, snap.Quantity, snap.EntryPrice)
}

// Reconcile aligns the machine with the position the venue reports. It runs
// after the stale-order sweep, so a pending order older than PendingTimeout
// has been cancelled by the time it is seen here.
func (m *Machine) Reconcile(venue *types.PositionSnapshot) {
	if venue != nil && (venue.Quantity <= 0 || venue.EntryPrice <= 0) {
		venue = nil
	}
	if p := m.pending; p != nil {
		expired := m.nowFn().Sub(p.placedAt) > m.params.PendingTimeout
		switch {
		case !p.exit && venue != nil:
			m.pending = nil
			m.sync(venue)
			logger.Infof("position: entry order %s filled qty=%.6f entry=%.4f", p.order.ID, m.pos.Quantity, m.pos.EntryPrice)
		case !p.exit && expired:
			m.pending = nil
			m.pos = nil
			logger.Warnf("position: entry order %s expired unfilled, back to FLAT", p.order.ID)
		case p.exit && venue == nil:
			m.settle(p.order)
			logger.Infof("position: exit order %s filled", p.order.ID)
		case p.exit && expired:
			m.pending = nil
			m.sync(venue)
			logger.Warnf("position: exit order %s expired unfilled, still %s", p.order.ID, m.State())
		}
		return
	}
	switch {
	case venue == nil && m.pos != nil:
		logger.Warnf("position: venue reports no position, dropping %s qty=%.6f", m.pos.Direction, m.pos.Quantity)
		m.pos = nil
	case venue != nil:
		m.sync(venue)
	}
}

func (m *Machine) sync(venue *types.PositionSnapshot) {
	if m.pos == nil || m.pos.Direction != venue.Direction {
		m.pos = nil
		m.Adopt(venue)
		return
	}
	m.pos.Quantity = venue.Quantity
	m.pos.EntryPrice = venue.EntryPrice
}

// settle books a filled exit against the gate and frees the slot.
func (m *Machine) settle(order exchange.Order) {
	if m.pos != nil {
		m.gate.RecordTradeOutcome(realizedPnL(*m.pos, order))
	}
	m.pos = nil
	m.pending = nil
}

func realizedPnL(p Position, exit exchange.Order) float64 {
	return (exit.Price - p.EntryPrice) * exit.Quantity * p.Direction.Sign()
}

// filledOrder fills in quantity and price the venue left out of its reply.
func filledOrder(order *exchange.Order, req exchange.OrderRequest) exchange.Order {
	var out exchange.Order
	if order != nil {
		out = *order
	}
	if out.Quantity <= 0 {
		out.Quantity = req.Quantity
	}
	if out.Price <= 0 {
		out.Price = req.Price
	}
	if out.Status == "" {
		out.Status = exchange.OrderStatusFilled
	}
	return out
}

func (m *Machine) place(ctx context.Context, req exchange.OrderRequest) (exchange.Order, error) {
	order, err := m.exec.PlaceOrder(ctx, req)
	if err != nil {
		return exchange.Order{}, err
	}
	out := filledOrder(order, req)
	if out.Status == exchange.OrderStatusCanceled {
		return exchange.Order{}, fmt.Errorf("order %s canceled on submit: %w", out.ID, exchange.ErrOrderRejected)
	}
	return out, nil
}

// Step runs entry logic when flat and exit logic when in a position. It
// holds without a record while an order is waiting for its fill.
func (m *Machine) Step(ctx context.Context, in Input) Outcome {
	metrics := in.Metrics.Clone()
	if m.pending != nil {
		logger.Debugf("position: waiting on order %s", m.pending.order.ID)
		return Outcome{}
	}
	if m.pos == nil {
		return m.enter(ctx, in, metrics)
	}
	return m.manage(ctx, in, metrics)
}

func (m *Machine) enter(ctx context.Context, in Input, metrics decision.Metrics) Outcome {
	snap := in.Snapshot
	if math.Abs(in.Score) < m.params.EntryThreshold {
		return emit(decision.TypeTradeSkipped, decision.ReasonWeakSignal, metrics)
	}
	if ok, reason := m.gate.CanEnter(snap.Spread); !ok {
		return emit(decision.TypeTradeSkipped, string(reason), metrics)
	}
	qty, leverage := m.gate.SizePosition(in.Equity, snap.Sigma, snap.Mid, snap.Spread)
	metrics[decision.MetricLeverage] = leverage
	metrics[decision.MetricQuantity] = qty
	if qty == 0 {
		logger.Warnf("position: sizing returned zero (sigma=%.6f)", snap.Sigma)
		return emit(decision.TypeTradeSkipped, decision.ReasonZeroSize, metrics)
	}

	side := types.Sell
	if in.Score > 0 {
		side = types.Buy
	}
	fill := side.CrossPrice(snap.Mid, snap.Spread)
	metrics[decision.MetricFillPrice] = fill
	logger.Infof("Signal: %s | Score: %.2f | Vol: %.4f | Leverage: %.2fx", side, in.Score, snap.Sigma, leverage)

	order, err := m.place(ctx, exchange.OrderRequest{Side: side, Quantity: qty, Price: fill})
	if err != nil {
		logger.Errorf("position: entry order failed side=%s qty=%.6f price=%.4f: %v", side, qty, fill, err)
		metrics[decision.MetricOrderError] = text.Truncate(err.Error(), maxOrderErrorLen)
		return emit(decision.TypeTradeSkipped, decision.ReasonOrderSubmissionFailed, metrics)
	}
	metrics[decision.MetricFillPrice] = order.Price
	m.pos = &Position{
		Direction:  side.Direction(),
		EntryPrice: order.Price,
		Quantity:   order.Quantity,
		OpenedAt:   m.nowFn().UTC(),
	}
	if order.Status != exchange.OrderStatusFilled {
		m.pending = &pendingOrder{order: order, placedAt: m.nowFn()}
	}
	return emit(decision.TypeTradeExecuted, decision.ReasonEntryPrefix+string(side), metrics)
}

// Checks evaluates every exit trigger against the open position.
func (m *Machine) Checks(snap market.Snapshot, score float64) ExitChecks {
	if m.pos == nil {
		return ExitChecks{}
	}
	p := m.pos
	var c ExitChecks
	switch p.Direction {
	case types.Long:
		c.SignalReversal = score < -m.params.ReversalThreshold
		c.VolatilityStop = snap.Mid < m.gate.StopPrice(p.EntryPrice, p.Direction, snap.Sigma)
	case types.Short:
		c.SignalReversal = score > m.params.ReversalThreshold
		c.VolatilityStop = snap.Mid > m.gate.StopPrice(p.EntryPrice, p.Direction, snap.Sigma)
	}
	held := m.nowFn().Sub(p.OpenedAt)
	c.TimeStop = held > m.params.MaxHold && p.UnrealizedPct(snap.Mid) <= 0
	return c
}

func (m *Machine) manage(ctx context.Context, in Input, metrics decision.Metrics) Outcome {
	p := *m.pos
	snap := in.Snapshot
	metrics[decision.MetricPositionSide] = p.Direction.Lower()
	metrics[decision.MetricEntryPrice] = p.EntryPrice
	metrics[decision.MetricPositionPnL] = p.UnrealizedPct(snap.Mid)
	metrics[decision.MetricStopPrice] = m.gate.StopPrice(p.EntryPrice, p.Direction, snap.Sigma)

	reason := m.Checks(snap, in.Score).Reason()
	if reason == ExitNone {
		return Outcome{}
	}

	side := p.Direction.ExitSide()
	fill := side.CrossPrice(snap.Mid, snap.Spread)
	metrics[decision.MetricExitReason] = reason.String()
	metrics[decision.MetricExitPrice] = fill
	metrics[decision.MetricHeldSeconds] = m.nowFn().Sub(p.OpenedAt).Seconds()
	logger.Infof("Exiting position (%s). Reason: %s", p.Direction.Lower(), reason)

	order, err := m.place(ctx, exchange.OrderRequest{Side: side, Quantity: p.Quantity, Price: fill})
	if err != nil {
		logger.Errorf("position: exit order failed side=%s qty=%.6f price=%.4f: %v", side, p.Quantity, fill, err)
		metrics[decision.MetricOrderError] = text.Truncate(err.Error(), maxOrderErrorLen)
		return emit(decision.TypeTradeSkipped, decision.ReasonOrderSubmissionFailed, metrics)
	}
	metrics[decision.MetricExitPrice] = order.Price
	metrics[decision.MetricRealizedPnL] = realizedPnL(p, order)
	if order.Status == exchange.OrderStatusFilled {
		m.settle(order)
	} else {
		// PnL is booked once the venue reports the position closed.
		m.pending = &pendingOrder{exit: true, order: order, placedAt: m.nowFn()}
	}
	return emit(decision.TypeTradeExecuted, fmt.Sprintf("%s%s", decision.ReasonExitPrefix, reason), metrics)
}
