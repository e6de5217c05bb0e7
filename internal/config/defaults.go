package config

import "strings"

const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultAppLogPath        = "logs/trading_agent.log"
	defaultAppEventsPath     = "events.log"
	defaultAppCycleSeconds   = 10
	defaultMarketExchange    = "binance"
	defaultMarketSymbol      = "BTC/USDT"
	defaultMarketTimeframe   = "1m"
	defaultVolatilityWindow  = 20
	defaultDepthLimit        = 10
	defaultTradeLimit        = 100
	defaultHTTPTimeout       = 15
	defaultBreakerThreshold  = 5
	defaultBreakerCooldown   = 60
	defaultRiskPerTrade      = 0.005
	defaultMaxDailyDrawdown  = 0.02
	defaultMaxConsecLosses   = 3
	defaultMaxLeverage       = 5.0
	defaultHoldingHorizon    = 240
	defaultMaxSpread         = 0.001
	defaultStopMultiplier    = 2.0
	defaultEntryThreshold    = 0.4
	defaultReversalThreshold = 0.1
	defaultMaxHoldCandles    = 60
	defaultExecutionMode     = ExecutionModePaper
	defaultPaperEquity       = 10000.0
	defaultOrderTimeout      = 30
	defaultExplainBaseURL    = "https://api.openai.com/v1"
	defaultExplainModel      = "gpt-4-turbo"
	defaultExplainTimeout    = 30
	defaultExplainCacheSize  = 1000
	defaultAPIAddr           = ":8000"
	defaultAPISystemPaper    = "JARVIS_PAPER_TRADING"
	defaultAPISystemLive     = "JARVIS_LIVE_TRADING"
	defaultAPIEventsLimit    = 50
	defaultAPIMaxLimit       = 1000
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults(nil)
	return &cfg
}

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Market.applyDefaults(keys)
	c.Risk.applyDefaults(keys)
	c.Strategy.applyDefaults(keys)
	c.Execution.applyDefaults(keys)
	c.Explain.applyDefaults(keys)
	c.API.applyDefaults(keys, c.Execution.IsLive())
	c.Notify.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
		stringFieldDefault("app.events_path", &a.EventsPath, defaultAppEventsPath),
		intFieldDefault("app.cycle_seconds", &a.CycleSeconds, defaultAppCycleSeconds),
		boolFieldDefault("app.run_immediately", &a.RunImmediately, true),
	)
}

func (m *MarketConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("market.exchange", &m.Exchange, defaultMarketExchange),
		stringFieldDefault("market.symbol", &m.Symbol, defaultMarketSymbol),
		stringFieldDefault("market.timeframe", &m.Timeframe, defaultMarketTimeframe),
		intFieldDefault("market.volatility_window", &m.VolatilityWindow, defaultVolatilityWindow),
		intFieldDefault("market.depth_limit", &m.DepthLimit, defaultDepthLimit),
		intFieldDefault("market.trade_limit", &m.TradeLimit, defaultTradeLimit),
		intFieldDefault("market.http_timeout_seconds", &m.HTTPTimeoutSeconds, defaultHTTPTimeout),
		intFieldDefault("market.breaker_threshold", &m.BreakerThreshold, defaultBreakerThreshold),
		intFieldDefault("market.breaker_cooldown_seconds", &m.BreakerCooldownSec, defaultBreakerCooldown),
	)
	m.Timeframe = strings.ToLower(strings.TrimSpace(m.Timeframe))
}

func (r *RiskConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		floatFieldDefault("risk.risk_per_trade", &r.RiskPerTrade, defaultRiskPerTrade),
		floatFieldDefault("risk.max_daily_drawdown", &r.MaxDailyDrawdown, defaultMaxDailyDrawdown),
		intFieldDefault("risk.max_consecutive_losses", &r.MaxConsecutiveLosses, defaultMaxConsecLosses),
		floatFieldDefault("risk.max_leverage", &r.MaxLeverage, defaultMaxLeverage),
		intFieldDefault("risk.holding_horizon_candles", &r.HoldingHorizon, defaultHoldingHorizon),
		floatFieldDefault("risk.max_spread", &r.MaxSpread, defaultMaxSpread),
		floatFieldDefault("risk.stop_multiplier", &r.StopMultiplier, defaultStopMultiplier),
	)
}

func (s *StrategyConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		floatFieldDefault("strategy.entry_threshold", &s.EntryThreshold, defaultEntryThreshold),
		floatFieldDefault("strategy.reversal_threshold", &s.ReversalThreshold, defaultReversalThreshold),
		intFieldDefault("strategy.max_hold_candles", &s.MaxHoldCandles, defaultMaxHoldCandles),
	)
}

func (e *ExecutionConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		stringFieldDefault("execution.mode", &e.Mode, defaultExecutionMode),
		floatFieldDefault("execution.paper_equity", &e.PaperEquity, defaultPaperEquity),
		intFieldDefault("execution.order_timeout_seconds", &e.OrderTimeoutSeconds, defaultOrderTimeout),
		boolFieldDefault("execution.testnet", &e.Testnet, true),
	)
	e.Mode = strings.ToLower(strings.TrimSpace(e.Mode))
}

func (x *ExplainConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		boolFieldDefault("explain.enabled", &x.Enabled, true),
		stringFieldDefault("explain.base_url", &x.BaseURL, defaultExplainBaseURL),
		stringFieldDefault("explain.model", &x.Model, defaultExplainModel),
		intFieldDefault("explain.timeout_seconds", &x.TimeoutSeconds, defaultExplainTimeout),
		intFieldDefault("explain.cache_size", &x.CacheSize, defaultExplainCacheSize),
	)
}

func (a *APIConfig) applyDefaults(keys keySet, live bool) {
	system := defaultAPISystemPaper
	if live {
		system = defaultAPISystemLive
	}
	applyFieldDefaults(keys,
		boolFieldDefault("api.enabled", &a.Enabled, true),
		stringFieldDefault("api.addr", &a.Addr, defaultAPIAddr),
		stringFieldDefault("api.system_name", &a.SystemName, system),
		intFieldDefault("api.events_limit", &a.EventsLimit, defaultAPIEventsLimit),
		intFieldDefault("api.max_limit", &a.MaxLimit, defaultAPIMaxLimit),
	)
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return strings.TrimSpace(*target) == "" },
		apply: func() { *target = def },
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return *target <= 0 },
		apply: func() { *target = def },
	}
}

func floatFieldDefault(key string, target *float64, def float64) fieldDefault {
	return fieldDefault{
		key:   key,
		need:  func() bool { return *target <= 0 },
		apply: func() { *target = def },
	}
}

// boolFieldDefault only applies when the key is absent, since false is a valid explicit value.
func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:   key,
		apply: func() { *target = def },
	}
}

func (n *NotifyConfig) applyDefaults(keys keySet) {
	applyFieldDefaults(keys,
		boolFieldDefault("notify.enabled", &n.Enabled, false),
		boolFieldDefault("notify.notify_trades", &n.NotifyTrades, false),
	)
}
