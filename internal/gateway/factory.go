// Package gateway wires venue adapters from configuration.
package gateway

import (
	"fmt"
	"strings"
	"time"

	"jarvis/internal/config"
	"jarvis/internal/gateway/binance"
	"jarvis/internal/gateway/exchange"
	"jarvis/internal/gateway/paper"
	"jarvis/internal/market"
)

func binanceConfig(cfg *config.Config) binance.Config {
	return binance.Config{
		Symbol:           cfg.Market.Symbol,
		Interval:         cfg.Market.Timeframe,
		APIKey:           cfg.Execution.APIKey,
		APISecret:        cfg.Execution.APISecret,
		Testnet:          cfg.Execution.Testnet,
		RESTBaseURL:      cfg.Market.RESTBaseURL,
		HTTPTimeout:      time.Duration(cfg.Market.HTTPTimeoutSeconds) * time.Second,
		ProxyURL:         cfg.Market.ProxyURL,
		VolatilityWindow: cfg.Market.VolatilityWindow,
		DepthLimit:       cfg.Market.DepthLimit,
		TradeLimit:       cfg.Market.TradeLimit,
		BreakerThreshold: cfg.Market.BreakerThreshold,
		BreakerCooldown:  time.Duration(cfg.Market.BreakerCooldownSec) * time.Second,
	}
}

func NewSourceFromConfig(cfg *config.Config) (market.Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Market.Exchange)) {
	case "", "binance", "binance-futures":
		return binance.NewSource(binanceConfig(cfg))
	default:
		return nil, fmt.Errorf("unsupported market source: %s", cfg.Market.Exchange)
	}
}

// NewExecutorFromConfig returns the paper backend unless execution.mode is live.
func NewExecutorFromConfig(cfg *config.Config) (exchange.Executor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if !cfg.Execution.IsLive() {
		return paper.New(cfg.Market.Symbol, cfg.Execution.PaperEquity), nil
	}
	return binance.NewExecutor(binanceConfig(cfg))
}
