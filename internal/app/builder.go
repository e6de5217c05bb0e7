package app

import (
	"context"
	"fmt"
	"time"

	"jarvis/internal/config"
	"jarvis/internal/decision"
	"jarvis/internal/engine"
	"jarvis/internal/eventlog"
	"jarvis/internal/explain"
	"jarvis/internal/gateway"
	"jarvis/internal/gateway/exchange"
	"jarvis/internal/gateway/notifier"
	"jarvis/internal/logger"
	"jarvis/internal/market"
	"jarvis/internal/metrics"
	"jarvis/internal/position"
	"jarvis/internal/risk"
	"jarvis/internal/scheduler"
	"jarvis/internal/transport/http/statushttp"
)

// AppBuilder assembles an App from config. The *Fn hooks exist so tests can
// swap venue adapters.
type AppBuilder struct {
	cfg *config.Config

	sourceFn   func(*config.Config) (market.Source, error)
	executorFn func(*config.Config) (exchange.Executor, error)
	explainFn  func(config.ExplainConfig) decision.Explainer
}

type AppBuilderOption func(*AppBuilder)

func WithSource(fn func(*config.Config) (market.Source, error)) AppBuilderOption {
	return func(b *AppBuilder) { b.sourceFn = fn }
}

func WithExecutor(fn func(*config.Config) (exchange.Executor, error)) AppBuilderOption {
	return func(b *AppBuilder) { b.executorFn = fn }
}

func WithExplainer(fn func(config.ExplainConfig) decision.Explainer) AppBuilderOption {
	return func(b *AppBuilder) { b.explainFn = fn }
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		sourceFn:   gateway.NewSourceFromConfig,
		executorFn: gateway.NewExecutorFromConfig,
		explainFn:  buildExplainer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	period, ok := scheduler.ParseIntervalDuration(cfg.Market.Timeframe)
	if !ok {
		return nil, fmt.Errorf("invalid timeframe %q", cfg.Market.Timeframe)
	}

	source, err := b.sourceFn(cfg)
	if err != nil {
		return nil, fmt.Errorf("market source: %w", err)
	}
	exec, err := b.executorFn(cfg)
	if err != nil {
		return nil, fmt.Errorf("executor: %w", err)
	}
	events, err := eventlog.Open(cfg.App.EventsPath)
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	recOpts := []decision.RecorderOption{decision.WithObserver(m)}
	if cfg.Explain.Enabled {
		if ex := b.explainFn(cfg.Explain); ex != nil {
			recOpts = append(recOpts, decision.WithExplainer(ex, time.Duration(cfg.Explain.TimeoutSeconds)*time.Second))
		}
	}
	var alerter *notifier.Alerter
	if cfg.Notify.Enabled {
		alerter = notifier.NewAlerter(notifier.NewTelegram(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID), cfg.Notify.NotifyTrades, 0)
		recOpts = append(recOpts, decision.WithObserver(alerter))
	}
	recorder := decision.NewRecorder(events, recOpts...)

	gate := risk.NewGate(riskParams(cfg.Risk))
	machine := position.NewMachine(position.Params{
		EntryThreshold:    cfg.Strategy.EntryThreshold,
		ReversalThreshold: cfg.Strategy.ReversalThreshold,
		MaxHold:           time.Duration(cfg.Strategy.MaxHoldCandles) * period,
		PendingTimeout:    time.Duration(cfg.Execution.OrderTimeoutSeconds) * time.Second,
	}, gate, exec)

	eng := engine.New(engine.Options{
		Interval:       time.Duration(cfg.App.CycleSeconds) * time.Second,
		RunImmediately: cfg.App.RunImmediately,
		OrderTimeout:   time.Duration(cfg.Execution.OrderTimeoutSeconds) * time.Second,
	}, source, exec, gate, machine, recorder, m)
	if err := eng.Init(ctx); err != nil {
		return nil, err
	}

	var server *statushttp.Server
	if cfg.API.Enabled {
		server, err = statushttp.NewServer(statushttp.Config{
			Addr:         cfg.API.Addr,
			SystemName:   cfg.API.SystemName,
			DefaultLimit: cfg.API.EventsLimit,
			MaxLimit:     cfg.API.MaxLimit,
			Events:       events,
			Metrics:      m.Handler(),
		})
		if err != nil {
			return nil, err
		}
	}

	return &App{
		cfg:      cfg,
		engine:   eng,
		recorder: recorder,
		alerter:  alerter,
		http:     server,
		Summary:  newStartupSummary(cfg, exec.Name(), eng.StartEquity(), period),
	}, nil
}

func riskParams(rc config.RiskConfig) risk.Params {
	return risk.Params{
		RiskPerTrade:         rc.RiskPerTrade,
		MaxDailyDrawdown:     rc.MaxDailyDrawdown,
		MaxConsecutiveLosses: rc.MaxConsecutiveLosses,
		MaxLeverage:          rc.MaxLeverage,
		HoldingHorizon:       rc.HoldingHorizon,
		MaxSpread:            rc.MaxSpread,
		StopMultiplier:       rc.StopMultiplier,
	}
}

func buildExplainer(xc config.ExplainConfig) decision.Explainer {
	var completer explain.Completer
	if xc.APIKey != "" {
		completer = &explain.OpenAIClient{
			BaseURL:     xc.BaseURL,
			APIKey:      xc.APIKey,
			Model:       xc.Model,
			Temperature: 0.5,
			Timeout:     time.Duration(xc.TimeoutSeconds) * time.Second,
		}
	} else {
		logger.Infof("explain: no LLM api key, using deterministic explanations")
	}
	return explain.NewService(explain.Options{
		Completer: completer,
		Provider:  xc.Model,
		CacheSize: xc.CacheSize,
	})
}
