package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectionSides(t *testing.T) {
	assert.Equal(t, Buy, Long.EntrySide())
	assert.Equal(t, Sell, Long.ExitSide())
	assert.Equal(t, Sell, Short.EntrySide())
	assert.Equal(t, Buy, Short.ExitSide())
	assert.Equal(t, Short, Sell.Direction())
	assert.Equal(t, "long", Long.Lower())
}

func TestCrossPrice(t *testing.T) {
	assert.InDelta(t, 100.05, Buy.CrossPrice(100, 0.001), 1e-9)
	assert.InDelta(t, 99.95, Sell.CrossPrice(100, 0.001), 1e-9)
}

func TestPositionPnL(t *testing.T) {
	long := PositionSnapshot{Direction: Long, EntryPrice: 100, Quantity: 2}
	short := PositionSnapshot{Direction: Short, EntryPrice: 100, Quantity: 2}
	assert.InDelta(t, 20.0, long.PnL(110), 1e-9)
	assert.InDelta(t, -20.0, short.PnL(110), 1e-9)
}
