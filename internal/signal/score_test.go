package signal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreKnownValues(t *testing.T) {
	assert.Equal(t, 0.0, Score(0, 0))
	assert.InDelta(t, math.Tanh(1), Score(1, 1), 1e-12)
	assert.InDelta(t, math.Tanh(-1), Score(-1, -1), 1e-12)
	assert.InDelta(t, 0.0, Score(0.6, -0.6), 1e-12)
}

func TestScoreRangeAndMonotonicity(t *testing.T) {
	grid := []float64{-1, -0.75, -0.5, -0.25, 0, 0.25, 0.5, 0.75, 1}
	for _, b := range grid {
		for i, f := range grid {
			s := Score(b, f)
			assert.Greater(t, s, -1.0)
			assert.Less(t, s, 1.0)
			if i > 0 {
				assert.GreaterOrEqual(t, s, Score(b, grid[i-1]), "flow monotone at book=%v", b)
				assert.GreaterOrEqual(t, Score(f, b), Score(grid[i-1], b), "book monotone at flow=%v", b)
			}
		}
	}
}
