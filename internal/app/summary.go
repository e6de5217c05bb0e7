package app

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"jarvis/internal/config"
)

// StartupSummary is the effective configuration printed once at startup.
type StartupSummary struct {
	System      string          `yaml:"system"`
	Executor    string          `yaml:"executor"`
	Symbol      string          `yaml:"symbol"`
	Timeframe   string          `yaml:"timeframe"`
	StartEquity float64         `yaml:"start_equity"`
	Cycle       string          `yaml:"cycle"`
	MaxHold     string          `yaml:"max_hold"`
	Risk        riskSummary     `yaml:"risk"`
	Strategy    strategySummary `yaml:"strategy"`
	Explain     string          `yaml:"explain"`
	API         string          `yaml:"api"`
	EventsPath  string          `yaml:"events_path"`
	ConfigPath  string          `yaml:"config_path,omitempty"`
}

type riskSummary struct {
	RiskPerTrade         float64 `yaml:"risk_per_trade"`
	MaxDailyDrawdown     float64 `yaml:"max_daily_drawdown"`
	MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
	MaxLeverage          float64 `yaml:"max_leverage"`
	MaxSpread            float64 `yaml:"max_spread"`
	HoldingHorizon       int     `yaml:"holding_horizon_candles"`
}

type strategySummary struct {
	EntryThreshold    float64 `yaml:"entry_threshold"`
	ReversalThreshold float64 `yaml:"reversal_threshold"`
}

func newStartupSummary(cfg *config.Config, executor string, startEquity float64, period time.Duration) *StartupSummary {
	explainMode := "off"
	if cfg.Explain.Enabled {
		explainMode = "fallback"
		if cfg.Explain.APIKey != "" {
			explainMode = cfg.Explain.Model
		}
	}
	api := "off"
	if cfg.API.Enabled {
		api = cfg.API.Addr
	}
	return &StartupSummary{
		System:      cfg.API.SystemName,
		Executor:    executor,
		Symbol:      cfg.Market.Symbol,
		Timeframe:   cfg.Market.Timeframe,
		StartEquity: startEquity,
		Cycle:       (time.Duration(cfg.App.CycleSeconds) * time.Second).String(),
		MaxHold:     (time.Duration(cfg.Strategy.MaxHoldCandles) * period).String(),
		Risk: riskSummary{
			RiskPerTrade:         cfg.Risk.RiskPerTrade,
			MaxDailyDrawdown:     cfg.Risk.MaxDailyDrawdown,
			MaxConsecutiveLosses: cfg.Risk.MaxConsecutiveLosses,
			MaxLeverage:          cfg.Risk.MaxLeverage,
			MaxSpread:            cfg.Risk.MaxSpread,
			HoldingHorizon:       cfg.Risk.HoldingHorizon,
		},
		Strategy: strategySummary{
			EntryThreshold:    cfg.Strategy.EntryThreshold,
			ReversalThreshold: cfg.Strategy.ReversalThreshold,
		},
		Explain:    explainMode,
		API:        api,
		EventsPath: cfg.App.EventsPath,
		ConfigPath: cfg.Path,
	}
}

func (s *StartupSummary) Render() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *StartupSummary) Print() {
	body, err := s.Render()
	if err != nil {
		body = fmt.Sprintf("summary unavailable: %v\n", err)
	}
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("JARVIS STARTUP SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Print(body)
	fmt.Println(strings.Repeat("=", 60))
}
