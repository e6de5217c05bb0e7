package binance

import (
	"context"
	"fmt"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"jarvis/internal/logger"
	"jarvis/internal/market"
	"jarvis/internal/pkg/circuit"
	symbolpkg "jarvis/internal/pkg/symbol"
	"jarvis/internal/scheduler"
)

const maxHistoryLimit = 1500

// Source implements market.Source over the futures REST API. Every cycle
// pulls the order book, recent aggregate trades and closed klines.
type Source struct {
	cfg      Config
	symbol   string
	interval time.Duration
	client   *futures.Client
	breaker  *circuit.Breaker
	nowFn    func() time.Time
}

func NewSource(cfg Config) (*Source, error) {
	final := cfg.withDefaults()
	sym := symbolpkg.Parse(final.Symbol)
	if !sym.Valid() {
		return nil, fmt.Errorf("invalid symbol: %q", final.Symbol)
	}
	dur, ok := scheduler.ParseIntervalDuration(final.Interval)
	if !ok {
		return nil, fmt.Errorf("invalid interval: %q", final.Interval)
	}
	client, err := newClient(final)
	if err != nil {
		return nil, err
	}
	return &Source{
		cfg:      final,
		symbol:   sym.Binance(),
		interval: dur,
		client:   client,
		breaker:  circuit.New("binance-market", final.BreakerThreshold, final.BreakerCooldown),
		nowFn:    time.Now,
	}, nil
}

func (s *Source) Snapshot(ctx context.Context) (market.Snapshot, error) {
	var snap market.Snapshot
	err := s.breaker.Do(ctx, func(ctx context.Context) error {
		book, err := s.FetchOrderBook(ctx)
		if err != nil {
			return fmt.Errorf("order book: %w", err)
		}
		trades, err := s.FetchTrades(ctx)
		if err != nil {
			return fmt.Errorf("agg trades: %w", err)
		}
		candles, err := s.FetchHistory(ctx, s.cfg.VolatilityWindow*2)
		if err != nil {
			return fmt.Errorf("klines: %w", err)
		}
		snap, err = market.Build(book, trades, candles, s.cfg.VolatilityWindow, s.nowFn())
		return err
	})
	if err != nil {
		return market.Snapshot{}, err
	}
	logger.Debugf("[binance] %s mid=%.4f spread=%.6f sigma=%.6f book=%.3f flow=%.3f",
		s.symbol, snap.Mid, snap.Spread, snap.Sigma, snap.BookImbalance, snap.FlowImbalance)
	return snap, nil
}

func (s *Source) FetchOrderBook(ctx context.Context) (market.OrderBook, error) {
	res, err := s.client.NewDepthService().Symbol(s.symbol).Limit(s.cfg.DepthLimit).Do(ctx)
	if err != nil {
		return market.OrderBook{}, err
	}
	book := market.OrderBook{
		Bids: make([]market.BookLevel, 0, len(res.Bids)),
		Asks: make([]market.BookLevel, 0, len(res.Asks)),
	}
	for _, b := range res.Bids {
		if lvl, ok := toLevel(b.Price, b.Quantity); ok {
			book.Bids = append(book.Bids, lvl)
		}
	}
	for _, a := range res.Asks {
		if lvl, ok := toLevel(a.Price, a.Quantity); ok {
			book.Asks = append(book.Asks, lvl)
		}
	}
	return book, nil
}

// FetchTrades returns recent aggregate trades. A buyer-maker trade was
// initiated by the seller.
func (s *Source) FetchTrades(ctx context.Context) ([]market.Trade, error) {
	res, err := s.client.NewAggTradesService().Symbol(s.symbol).Limit(s.cfg.TradeLimit).Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]market.Trade, 0, len(res))
	for _, t := range res {
		if t == nil {
			continue
		}
		price, perr := decimal.NewFromString(t.Price)
		qty, qerr := decimal.NewFromString(t.Quantity)
		if perr != nil || qerr != nil {
			continue
		}
		out = append(out, market.Trade{
			Price:    price,
			Quantity: qty,
			TakerBuy: !t.IsBuyerMaker,
			Time:     t.Timestamp,
		})
	}
	return out, nil
}

// FetchHistory returns closed candles, oldest first.
func (s *Source) FetchHistory(ctx context.Context, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	kls, err := s.client.NewKlinesService().Symbol(s.symbol).Interval(s.cfg.Interval).Limit(limit).Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
			Trades:    kl.TradeNum,
		})
	}
	return scheduler.DropUnclosedKline(out, s.interval), nil
}

func toLevel(price, qty string) (market.BookLevel, bool) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return market.BookLevel{}, false
	}
	q, err := decimal.NewFromString(qty)
	if err != nil {
		return market.BookLevel{}, false
	}
	return market.BookLevel{Price: p, Quantity: q}, true
}

func parseFloat(v string) float64 {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}
