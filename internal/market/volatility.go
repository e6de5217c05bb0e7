package market

import (
	"math"

	"github.com/markcheno/go-talib"
)

// Returns computes simple close-to-close returns. A non-positive previous
// close yields no return for that step.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev <= 0 {
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// RealizedVolatility is the sample (n-1) standard deviation of the last
// window returns of closes. It is 0 when fewer than window returns exist.
func RealizedVolatility(closes []float64, window int) float64 {
	if window < 2 {
		return 0
	}
	rets := Returns(closes)
	if len(rets) < window {
		return 0
	}
	std := talib.StdDev(rets, window, 1.0)
	pop := std[len(std)-1]
	if math.IsNaN(pop) || pop <= 0 {
		return 0
	}
	n := float64(window)
	return pop * math.Sqrt(n/(n-1))
}
