package scheduler

import (
	"time"

	"jarvis/internal/market"
)

// DefaultKlineGrace is how long after a candle's nominal close it is still
// treated as possibly unsettled.
const DefaultKlineGrace = 10 * time.Second

// DropUnclosedKline trims the trailing in-progress candle that Binance
// returns as the last kline element. OpenTime is in epoch milliseconds.
func DropUnclosedKline(klines []market.Candle, interval time.Duration) []market.Candle {
	return dropUnclosedKlineAt(klines, interval, time.Now().UTC(), DefaultKlineGrace)
}

func dropUnclosedKlineAt(klines []market.Candle, interval time.Duration, now time.Time, grace time.Duration) []market.Candle {
	if len(klines) == 0 || interval <= 0 {
		return klines
	}
	if grace < 0 {
		grace = 0
	}
	last := klines[len(klines)-1]
	if last.OpenTime <= 0 {
		return klines
	}
	cutoffMs := last.OpenTime + interval.Milliseconds() + grace.Milliseconds()
	if now.UnixMilli() < cutoffMs {
		return klines[:len(klines)-1]
	}
	return klines
}
