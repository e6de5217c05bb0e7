package risk

import (
	"math"
	"testing"

	"jarvis/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestRecordTradeOutcome(t *testing.T) {
	g := NewGate(DefaultParams())

	g.RecordTradeOutcome(-1)
	g.RecordTradeOutcome(-2)
	assert.Equal(t, 2, g.State().ConsecutiveLosses)

	g.RecordTradeOutcome(0)
	assert.Equal(t, 0, g.State().ConsecutiveLosses, "breakeven resets the streak")

	g.RecordTradeOutcome(5)
	assert.InDelta(t, 2.0, g.State().DailyPnL, 1e-12)
	assert.True(t, g.Active())
}

func TestLossStreakLocksEntry(t *testing.T) {
	g := NewGate(DefaultParams())
	for i := 0; i < 3; i++ {
		g.RecordTradeOutcome(-10)
	}
	ok, reason := g.CanEnter(0.0001)
	assert.False(t, ok)
	assert.Equal(t, ReasonMaxConsecutiveLosses, reason)

	g.RecordTradeOutcome(1)
	ok, reason = g.CanEnter(0.0001)
	assert.True(t, ok)
	assert.Equal(t, ReasonNone, reason)
}

func TestEvaluateDrawdownLatch(t *testing.T) {
	g := NewGate(DefaultParams())

	assert.True(t, g.EvaluateDrawdown(990, 1000))
	assert.True(t, g.Active())

	assert.False(t, g.EvaluateDrawdown(975, 1000))
	assert.False(t, g.Active())

	assert.False(t, g.EvaluateDrawdown(1500, 1000), "latch never clears")
	assert.False(t, g.Active())

	ok, reason := g.CanEnter(0)
	assert.False(t, ok)
	assert.Equal(t, ReasonRiskLocked, reason)
}

func TestEvaluateDrawdownBoundary(t *testing.T) {
	g := NewGate(DefaultParams())
	assert.False(t, g.EvaluateDrawdown(980, 1000), "exactly -2% trips the latch")
}

func TestCanEnterPrecedence(t *testing.T) {
	g := NewGate(DefaultParams())
	for i := 0; i < 3; i++ {
		g.RecordTradeOutcome(-1)
	}
	g.EvaluateDrawdown(0, 1000)

	ok, reason := g.CanEnter(0.5)
	assert.False(t, ok)
	assert.Equal(t, ReasonRiskLocked, reason)

	g2 := NewGate(DefaultParams())
	for i := 0; i < 3; i++ {
		g2.RecordTradeOutcome(-1)
	}
	_, reason = g2.CanEnter(0.5)
	assert.Equal(t, ReasonMaxConsecutiveLosses, reason)

	_, reason = NewGate(DefaultParams()).CanEnter(0.0011)
	assert.Equal(t, ReasonSpreadTooHigh, reason)

	ok, _ = NewGate(DefaultParams()).CanEnter(0.001)
	assert.True(t, ok, "spread equal to the limit is allowed")
}

func TestSizePosition(t *testing.T) {
	g := NewGate(DefaultParams())

	t.Run("zero sigma", func(t *testing.T) {
		qty, lev := g.SizePosition(10000, 0, 100, 0.0005)
		assert.Equal(t, 0.0, qty)
		assert.Equal(t, 0.0, lev)
	})

	t.Run("risk budget binds", func(t *testing.T) {
		qty, lev := g.SizePosition(10000, 0.001, 100, 0.0005)
		notional := 50 / (2 * 0.001 * math.Sqrt(240))
		assert.InDelta(t, notional/100, qty, 1e-9)
		assert.InDelta(t, notional/10000, lev, 1e-12)
	})

	t.Run("hard cap binds", func(t *testing.T) {
		qty, lev := g.SizePosition(10000, 1e-5, 100, 0.0001)
		assert.InDelta(t, 5.0, lev, 1e-12)
		assert.InDelta(t, 500.0, qty, 1e-9)
	})

	t.Run("spread cap binds", func(t *testing.T) {
		_, lev := g.SizePosition(10000, 1e-5, 100, 0.2)
		assert.InDelta(t, 2.5, lev, 1e-12)
	})

	t.Run("zero spread has no spread cap", func(t *testing.T) {
		_, lev := g.SizePosition(10000, 1e-5, 100, 0)
		assert.InDelta(t, 5.0, lev, 1e-12)
	})
}

func TestSizePositionNeverExceedsCap(t *testing.T) {
	g := NewGate(DefaultParams())
	for _, sigma := range []float64{1e-6, 1e-4, 0.001, 0.01, 0.1, 0.5, 2} {
		for _, spread := range []float64{0, 1e-5, 0.001, 0.01, 0.3} {
			qty, lev := g.SizePosition(12345, sigma, 250, spread)
			assert.GreaterOrEqual(t, qty, 0.0)
			assert.LessOrEqual(t, lev, g.LeverageCap(sigma, spread)+1e-12, "sigma=%v spread=%v", sigma, spread)
			q2, l2 := g.SizePosition(12345, sigma, 250, spread)
			assert.Equal(t, qty, q2)
			assert.Equal(t, lev, l2)
		}
	}
}

func TestStopPrice(t *testing.T) {
	g := NewGate(DefaultParams())

	long := g.StopPrice(100, types.Long, 0.01)
	assert.InDelta(t, 69.016, long, 0.001)
	assert.Less(t, long, 100.0)

	short := g.StopPrice(100, types.Short, 0.01)
	assert.InDelta(t, 130.984, short, 0.001)
	assert.Greater(t, short, 100.0)
}
