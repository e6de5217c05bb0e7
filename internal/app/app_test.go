package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/config"
	"jarvis/internal/decision"
	"jarvis/internal/gateway/exchange"
	"jarvis/internal/gateway/paper"
	"jarvis/internal/market"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.App.EventsPath = filepath.Join(t.TempDir(), "events.log")
	cfg.App.RunImmediately = true
	cfg.App.CycleSeconds = 60
	cfg.API.Enabled = false
	cfg.Explain.Enabled = false
	return cfg
}

func stubSource(snap market.Snapshot) func(*config.Config) (market.Source, error) {
	return func(*config.Config) (market.Source, error) {
		return market.SourceFunc(func(context.Context) (market.Snapshot, error) { return snap, nil }), nil
	}
}

func paperExec(cfg *config.Config) (exchange.Executor, error) {
	return paper.New(cfg.Market.Symbol, cfg.Execution.PaperEquity), nil
}

func TestBuildAndRunOneCycle(t *testing.T) {
	cfg := testConfig(t)
	snap := market.Snapshot{Mid: 100, Spread: 0.0002, Sigma: 0.001, BookImbalance: 0.05, FlowImbalance: 0.05}
	a, err := NewAppBuilder(cfg, WithSource(stubSource(snap)), WithExecutor(paperExec)).Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10000.0, a.Engine().StartEquity())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	require.NoError(t, a.Run(ctx))

	raw, err := os.ReadFile(cfg.App.EventsPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"reason":"WEAK_SIGNAL"`)
}

func TestBuildWiresExplainer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Explain.Enabled = true
	called := false
	_, err := NewAppBuilder(cfg,
		WithSource(stubSource(market.Snapshot{Mid: 1})),
		WithExecutor(paperExec),
		WithExplainer(func(config.ExplainConfig) decision.Explainer {
			called = true
			return buildExplainer(config.ExplainConfig{CacheSize: 10})
		}),
	).Build(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
}

func TestBuildFailsOnZeroEquity(t *testing.T) {
	cfg := testConfig(t)
	cfg.Execution.PaperEquity = 0
	_, err := NewAppBuilder(cfg, WithSource(stubSource(market.Snapshot{})), WithExecutor(paperExec)).Build(context.Background())
	require.Error(t, err)
}

func TestStartupSummaryRender(t *testing.T) {
	cfg := testConfig(t)
	s := newStartupSummary(cfg, "paper", 10000, time.Minute)
	out, err := s.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "system: JARVIS_PAPER_TRADING")
	assert.Contains(t, out, "max_hold: 1h0m0s")
	assert.Contains(t, out, "max_daily_drawdown: 0.02")
}
