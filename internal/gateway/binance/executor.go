package binance

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"jarvis/internal/gateway/exchange"
	"jarvis/internal/logger"
	"jarvis/internal/pkg/circuit"
	symbolpkg "jarvis/internal/pkg/symbol"
	"jarvis/internal/types"
)

// clientIDPrefix tags orders this process placed. Only tagged orders are
// swept by CancelStaleOrders.
const clientIDPrefix = "jarvis-"

// Executor places GTC limit orders on USDⓈ-M futures for one symbol.
type Executor struct {
	client   *futures.Client
	symbol   string
	display  string
	currency string
	breaker  *circuit.Breaker
	nowFn    func() time.Time

	filterMu sync.Mutex
	stepSize decimal.Decimal
	tickSize decimal.Decimal
	loaded   bool
}

func NewExecutor(cfg Config) (*Executor, error) {
	final := cfg.withDefaults()
	sym := symbolpkg.Parse(final.Symbol)
	if !sym.Valid() {
		return nil, fmt.Errorf("invalid symbol: %q", final.Symbol)
	}
	if final.APIKey == "" || final.APISecret == "" {
		return nil, fmt.Errorf("binance executor requires api key and secret")
	}
	client, err := newClient(final)
	if err != nil {
		return nil, err
	}
	return &Executor{
		client:   client,
		symbol:   sym.Binance(),
		display:  sym.Internal(),
		currency: sym.Quote,
		breaker:  circuit.New("binance-orders", final.BreakerThreshold, final.BreakerCooldown),
		nowFn:    time.Now,
	}, nil
}

func (e *Executor) Name() string { return "binance" }

// SyncTime aligns request timestamps with the venue clock.
func (e *Executor) SyncTime(ctx context.Context) error {
	var offset int64
	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		offset, err = e.client.NewSetServerTimeService().Do(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("sync server time: %w", err)
	}
	if offset > 1000 || offset < -1000 {
		logger.Warnf("[binance] local clock offset %d ms", offset)
	}
	return nil
}

func (e *Executor) FetchBalance(ctx context.Context) (types.AccountSnapshot, error) {
	var acct *futures.Account
	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		acct, err = e.client.NewGetAccountService().Do(ctx)
		return err
	})
	if err != nil {
		return types.AccountSnapshot{}, fmt.Errorf("fetch balance: %w", err)
	}
	total := parseFloat(acct.TotalMarginBalance)
	if total == 0 {
		total = parseFloat(acct.TotalWalletBalance) + parseFloat(acct.TotalUnrealizedProfit)
	}
	return types.AccountSnapshot{
		Total:     total,
		Available: parseFloat(acct.AvailableBalance),
		Currency:  e.currency,
		UpdatedAt: e.nowFn().UTC(),
	}, nil
}

func (e *Executor) GetPosition(ctx context.Context) (*types.PositionSnapshot, error) {
	var risks []*futures.PositionRisk
	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		risks, err = e.client.NewGetPositionRiskService().Symbol(e.symbol).Do(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch position: %w", err)
	}
	for _, r := range risks {
		if r == nil || r.Symbol != e.symbol {
			continue
		}
		amt, err := decimal.NewFromString(r.PositionAmt)
		if err != nil || amt.IsZero() {
			continue
		}
		dir := types.Long
		if amt.IsNegative() {
			dir = types.Short
		}
		return &types.PositionSnapshot{
			Symbol:        e.display,
			Direction:     dir,
			EntryPrice:    parseFloat(r.EntryPrice),
			Quantity:      amt.Abs().InexactFloat64(),
			UnrealizedPnL: parseFloat(r.UnRealizedProfit),
			OpenedAt:      e.nowFn().UTC(),
		}, nil
	}
	return nil, nil
}

func (e *Executor) PlaceOrder(ctx context.Context, req exchange.OrderRequest) (*exchange.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := e.loadFilters(ctx); err != nil {
		return nil, err
	}
	qty, price := e.round(req)
	if qty.IsZero() || price.IsZero() {
		return nil, fmt.Errorf("quantity %v below lot step %s: %w", req.Quantity, e.stepSize, exchange.ErrOrderRejected)
	}
	clientID := req.ClientID
	if clientID == "" {
		clientID = clientIDPrefix + uuid.NewString()[:18]
	}
	side := futures.SideTypeBuy
	if req.Side == types.Sell {
		side = futures.SideTypeSell
	}

	var res *futures.CreateOrderResponse
	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		res, err = e.client.NewCreateOrderService().
			Symbol(e.symbol).
			Side(side).
			Type(futures.OrderTypeLimit).
			TimeInForce(futures.TimeInForceTypeGTC).
			Quantity(qty.String()).
			Price(price.String()).
			NewClientOrderID(clientID).
			Do(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("place %s %s@%s: %w", req.Side, qty, price, err)
	}
	logger.Infof("[binance] order %d %s %s qty=%s price=%s status=%s", res.OrderID, e.symbol, req.Side, qty, price, res.Status)
	return &exchange.Order{
		ID:        strconv.FormatInt(res.OrderID, 10),
		ClientID:  clientID,
		Symbol:    e.display,
		Side:      req.Side,
		Quantity:  qty.InexactFloat64(),
		Price:     price.InexactFloat64(),
		Status:    orderStatus(res.Status),
		CreatedAt: e.nowFn().UTC(),
	}, nil
}

// CancelStaleOrders cancels this process's open orders older than timeout.
// Orders without the jarvis client id prefix are left alone. Individual
// cancel failures are joined and do not stop the sweep.
func (e *Executor) CancelStaleOrders(ctx context.Context, timeout time.Duration) (int, error) {
	var orders []*futures.Order
	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		orders, err = e.client.NewListOpenOrdersService().Symbol(e.symbol).Do(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list open orders: %w", err)
	}
	now := e.nowFn()
	var (
		cancelled int
		errs      []error
	)
	for _, o := range orders {
		if o == nil || !strings.HasPrefix(o.ClientOrderID, clientIDPrefix) {
			continue
		}
		age := now.Sub(time.UnixMilli(o.Time))
		if age <= timeout {
			continue
		}
		id := o.OrderID
		err := e.breaker.Do(ctx, func(ctx context.Context) error {
			_, err := e.client.NewCancelOrderService().Symbol(e.symbol).OrderID(id).Do(ctx)
			return err
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("cancel %d: %w", id, err))
			continue
		}
		cancelled++
		logger.Infof("[binance] cancelled stale order %d age=%s", id, age.Round(time.Second))
	}
	return cancelled, errors.Join(errs...)
}

func (e *Executor) loadFilters(ctx context.Context) error {
	e.filterMu.Lock()
	defer e.filterMu.Unlock()
	if e.loaded {
		return nil
	}
	var info *futures.ExchangeInfo
	err := e.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		info, err = e.client.NewExchangeInfoService().Do(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("exchange info: %w", err)
	}
	for _, s := range info.Symbols {
		if s.Symbol != e.symbol {
			continue
		}
		for _, f := range s.Filters {
			switch f["filterType"] {
			case "LOT_SIZE":
				e.stepSize = filterDecimal(f, "stepSize")
			case "PRICE_FILTER":
				e.tickSize = filterDecimal(f, "tickSize")
			}
		}
		e.loaded = true
		return nil
	}
	return fmt.Errorf("symbol %s not listed: %w", e.symbol, exchange.ErrOrderRejected)
}

// round floors quantity to the lot step. Buy prices round up and sell
// prices down to the tick so a crossing order stays marketable.
func (e *Executor) round(req exchange.OrderRequest) (qty, price decimal.Decimal) {
	qty = decimal.NewFromFloat(req.Quantity)
	price = decimal.NewFromFloat(req.Price)
	if e.stepSize.IsPositive() {
		qty = qty.Div(e.stepSize).Floor().Mul(e.stepSize)
	}
	if e.tickSize.IsPositive() {
		steps := price.Div(e.tickSize)
		if req.Side == types.Buy {
			steps = steps.Ceil()
		} else {
			steps = steps.Floor()
		}
		price = steps.Mul(e.tickSize)
	}
	return qty, price
}

func filterDecimal(f map[string]interface{}, key string) decimal.Decimal {
	raw, ok := f[key].(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func orderStatus(s futures.OrderStatusType) exchange.OrderStatus {
	switch s {
	case futures.OrderStatusTypeFilled:
		return exchange.OrderStatusFilled
	case futures.OrderStatusTypeCanceled, futures.OrderStatusTypeExpired, futures.OrderStatusTypeRejected:
		return exchange.OrderStatusCanceled
	default:
		return exchange.OrderStatusNew
	}
}
