package config

import (
	"fmt"
	"strings"

	"jarvis/internal/scheduler"
)

func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Market.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Strategy.validate(); err != nil {
		return err
	}
	if err := c.Execution.validate(); err != nil {
		return err
	}
	if err := c.Explain.validate(); err != nil {
		return err
	}
	if err := c.API.validate(); err != nil {
		return err
	}
	return c.Notify.validate()
}

func (a *AppConfig) validate() error {
	if a.CycleSeconds <= 0 {
		return fmt.Errorf("app.cycle_seconds must be > 0")
	}
	if strings.TrimSpace(a.EventsPath) == "" {
		return fmt.Errorf("app.events_path is required")
	}
	return nil
}

func (m *MarketConfig) validate() error {
	if !strings.EqualFold(m.Exchange, defaultMarketExchange) {
		return fmt.Errorf("market.exchange %q is not supported (only binance)", m.Exchange)
	}
	if strings.TrimSpace(m.Symbol) == "" {
		return fmt.Errorf("market.symbol is required")
	}
	if _, ok := scheduler.ParseIntervalDuration(m.Timeframe); !ok {
		return fmt.Errorf("market.timeframe %q is invalid", m.Timeframe)
	}
	if m.VolatilityWindow < 2 {
		return fmt.Errorf("market.volatility_window must be >= 2")
	}
	if m.DepthLimit <= 0 || m.TradeLimit <= 0 {
		return fmt.Errorf("market.depth_limit and market.trade_limit must be > 0")
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.RiskPerTrade <= 0 || r.RiskPerTrade >= 1 {
		return fmt.Errorf("risk.risk_per_trade must be in (0,1)")
	}
	if r.MaxDailyDrawdown <= 0 || r.MaxDailyDrawdown >= 1 {
		return fmt.Errorf("risk.max_daily_drawdown must be in (0,1)")
	}
	if r.MaxConsecutiveLosses <= 0 {
		return fmt.Errorf("risk.max_consecutive_losses must be > 0")
	}
	if r.MaxLeverage <= 0 {
		return fmt.Errorf("risk.max_leverage must be > 0")
	}
	if r.HoldingHorizon <= 0 {
		return fmt.Errorf("risk.holding_horizon_candles must be > 0")
	}
	if r.MaxSpread <= 0 {
		return fmt.Errorf("risk.max_spread must be > 0")
	}
	if r.StopMultiplier <= 0 {
		return fmt.Errorf("risk.stop_multiplier must be > 0")
	}
	return nil
}

func (s *StrategyConfig) validate() error {
	if s.EntryThreshold <= 0 || s.EntryThreshold >= 1 {
		return fmt.Errorf("strategy.entry_threshold must be in (0,1)")
	}
	if s.ReversalThreshold < 0 || s.ReversalThreshold >= 1 {
		return fmt.Errorf("strategy.reversal_threshold must be in [0,1)")
	}
	if s.MaxHoldCandles <= 0 {
		return fmt.Errorf("strategy.max_hold_candles must be > 0")
	}
	return nil
}

func (e *ExecutionConfig) validate() error {
	switch e.Mode {
	case ExecutionModePaper:
		if e.PaperEquity <= 0 {
			return fmt.Errorf("execution.paper_equity must be > 0")
		}
	case ExecutionModeLive:
		if strings.TrimSpace(e.APIKey) == "" || strings.TrimSpace(e.APISecret) == "" {
			return fmt.Errorf("execution.mode=live requires EXCHANGE_API_KEY and EXCHANGE_SECRET")
		}
	default:
		return fmt.Errorf("execution.mode must be paper or live, got %q", e.Mode)
	}
	if e.OrderTimeoutSeconds <= 0 {
		return fmt.Errorf("execution.order_timeout_seconds must be > 0")
	}
	return nil
}

func (x *ExplainConfig) validate() error {
	if x.CacheSize <= 0 {
		return fmt.Errorf("explain.cache_size must be > 0")
	}
	return nil
}

func (a *APIConfig) validate() error {
	if !a.Enabled {
		return nil
	}
	if strings.TrimSpace(a.Addr) == "" {
		return fmt.Errorf("api.addr is required when api.enabled")
	}
	if a.EventsLimit <= 0 || a.MaxLimit < a.EventsLimit {
		return fmt.Errorf("api.events_limit must be > 0 and <= api.max_limit")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if !n.Enabled {
		return nil
	}
	if strings.TrimSpace(n.TelegramToken) == "" || strings.TrimSpace(n.TelegramChatID) == "" {
		return fmt.Errorf("notify.enabled requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
	}
	return nil
}
