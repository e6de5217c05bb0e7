// Package signal fuses microstructure imbalances into a direction score.
package signal

import "math"

const (
	bookWeight = 0.5
	flowWeight = 0.5
)

// Score returns tanh(0.5*book + 0.5*flow). Positive favours long, negative
// favours short; the result lies strictly inside (-1, 1).
func Score(book, flow float64) float64 {
	return math.Tanh(bookWeight*book + flowWeight*flow)
}
