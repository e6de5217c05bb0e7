// Package paper is an in-memory execution backend that fills every order
// immediately at its limit price and books realised PnL into equity.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jarvis/internal/gateway/exchange"
	"jarvis/internal/logger"
	"jarvis/internal/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const currency = "USDT"

type position struct {
	direction types.Direction
	entry     decimal.Decimal
	quantity  decimal.Decimal
	openedAt  time.Time
}

// Executor holds at most one position. An order on the opposite side of the
// open position closes it in full; an order on the same side is rejected.
type Executor struct {
	symbol string

	mu       sync.Mutex
	equity   decimal.Decimal
	position *position
	fills    []exchange.Order

	nowFn func() time.Time
}

func New(symbol string, initialEquity float64) *Executor {
	return &Executor{
		symbol: symbol,
		equity: decimal.NewFromFloat(initialEquity),
		nowFn:  time.Now,
	}
}

func (e *Executor) Name() string { return "paper" }

func (e *Executor) FetchBalance(context.Context) (types.AccountSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.equity.InexactFloat64()
	return types.AccountSnapshot{
		Total:     total,
		Available: total,
		Currency:  currency,
		UpdatedAt: e.nowFn().UTC(),
	}, nil
}

func (e *Executor) GetPosition(context.Context) (*types.PositionSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.position == nil {
		return nil, nil
	}
	return &types.PositionSnapshot{
		Symbol:     e.symbol,
		Direction:  e.position.direction,
		EntryPrice: e.position.entry.InexactFloat64(),
		Quantity:   e.position.quantity.InexactFloat64(),
		OpenedAt:   e.position.openedAt,
	}, nil
}

func (e *Executor) PlaceOrder(_ context.Context, req exchange.OrderRequest) (*exchange.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.nowFn().UTC()
	price := decimal.NewFromFloat(req.Price)
	qty := decimal.NewFromFloat(req.Quantity)

	switch {
	case e.position == nil:
		e.position = &position{
			direction: req.Side.Direction(),
			entry:     price,
			quantity:  qty,
			openedAt:  now,
		}
		logger.Infof("PAPER TRADE: opened %s @ %s size=%s", e.position.direction, price.StringFixed(2), qty.StringFixed(4))
	case req.Side == e.position.direction.ExitSide():
		if !qty.Equal(e.position.quantity) {
			logger.Warnf("PAPER TRADE: close size %s differs from position %s, closing in full", qty, e.position.quantity)
		}
		pnl := price.Sub(e.position.entry).Mul(e.position.quantity)
		if e.position.direction == types.Short {
			pnl = pnl.Neg()
		}
		e.equity = e.equity.Add(pnl)
		logger.Infof("PAPER TRADE: closed %s pnl=%s equity=%s", e.position.direction, pnl.StringFixed(2), e.equity.StringFixed(2))
		e.position = nil
	default:
		logger.Warnf("PAPER TRADE: adding to an open %s position is not supported", e.position.direction)
		return nil, fmt.Errorf("paper: position already open on side %s: %w", req.Side, exchange.ErrOrderRejected)
	}

	order := exchange.Order{
		ID:        uuid.New().String(),
		ClientID:  req.ClientID,
		Symbol:    e.symbol,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Status:    exchange.OrderStatusFilled,
		CreatedAt: now,
	}
	e.fills = append(e.fills, order)
	return &order, nil
}

// CancelStaleOrders is a no-op: paper orders never rest.
func (e *Executor) CancelStaleOrders(context.Context, time.Duration) (int, error) {
	return 0, nil
}

// Fills returns a copy of every filled order, oldest first.
func (e *Executor) Fills() []exchange.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]exchange.Order, len(e.fills))
	copy(out, e.fills)
	return out
}

var _ exchange.Executor = (*Executor)(nil)
