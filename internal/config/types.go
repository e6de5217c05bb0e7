package config

import "strings"

// Config is the root of the jarvis configuration file.
type Config struct {
	App       AppConfig       `toml:"app"`
	Market    MarketConfig    `toml:"market"`
	Risk      RiskConfig      `toml:"risk"`
	Strategy  StrategyConfig  `toml:"strategy"`
	Execution ExecutionConfig `toml:"execution"`
	Explain   ExplainConfig   `toml:"explain"`
	API       APIConfig       `toml:"api"`
	Notify    NotifyConfig    `toml:"notify"`

	// Path is the file Load was called with; empty when running on defaults.
	Path string `toml:"-"`
}

type AppConfig struct {
	Env            string `toml:"env"`
	LogLevel       string `toml:"log_level"`
	LogPath        string `toml:"log_path"`
	ExplainLogPath string `toml:"explain_log_path"`
	EventsPath     string `toml:"events_path"`
	CycleSeconds   int    `toml:"cycle_seconds"`
	RunImmediately bool   `toml:"run_immediately"`
}

type MarketConfig struct {
	Exchange           string `toml:"exchange"`
	Symbol             string `toml:"symbol"`
	Timeframe          string `toml:"timeframe"`
	VolatilityWindow   int    `toml:"volatility_window"`
	DepthLimit         int    `toml:"depth_limit"`
	TradeLimit         int    `toml:"trade_limit"`
	RESTBaseURL        string `toml:"rest_base_url"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	ProxyURL           string `toml:"proxy_url"`
	BreakerThreshold   int    `toml:"breaker_threshold"`
	BreakerCooldownSec int    `toml:"breaker_cooldown_seconds"`
}

// RiskConfig mirrors risk.Params.
type RiskConfig struct {
	RiskPerTrade         float64 `toml:"risk_per_trade"`
	MaxDailyDrawdown     float64 `toml:"max_daily_drawdown"`
	MaxConsecutiveLosses int     `toml:"max_consecutive_losses"`
	MaxLeverage          float64 `toml:"max_leverage"`
	HoldingHorizon       int     `toml:"holding_horizon_candles"`
	MaxSpread            float64 `toml:"max_spread"`
	StopMultiplier       float64 `toml:"stop_multiplier"`
}

type StrategyConfig struct {
	EntryThreshold    float64 `toml:"entry_threshold"`
	ReversalThreshold float64 `toml:"reversal_threshold"`
	MaxHoldCandles    int     `toml:"max_hold_candles"`
}

const (
	ExecutionModePaper = "paper"
	ExecutionModeLive  = "live"
)

type ExecutionConfig struct {
	Mode                string  `toml:"mode"`
	PaperEquity         float64 `toml:"paper_equity"`
	OrderTimeoutSeconds int     `toml:"order_timeout_seconds"`
	Testnet             bool    `toml:"testnet"`
	APIKey              string  `toml:"api_key"`
	APISecret           string  `toml:"api_secret"`
}

func (e ExecutionConfig) IsLive() bool {
	return strings.EqualFold(strings.TrimSpace(e.Mode), ExecutionModeLive)
}

type ExplainConfig struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheSize      int    `toml:"cache_size"`
}

type APIConfig struct {
	Enabled     bool   `toml:"enabled"`
	Addr        string `toml:"addr"`
	SystemName  string `toml:"system_name"`
	EventsLimit int    `toml:"events_limit"`
	MaxLimit    int    `toml:"max_limit"`
}

// NotifyConfig drives Telegram alerts for risk locks and, optionally, fills.
type NotifyConfig struct {
	Enabled        bool   `toml:"enabled"`
	TelegramToken  string `toml:"telegram_token"`
	TelegramChatID string `toml:"telegram_chat_id"`
	NotifyTrades   bool   `toml:"notify_trades"`
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}
