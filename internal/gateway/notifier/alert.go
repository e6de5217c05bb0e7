package notifier

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"jarvis/internal/decision"
	"jarvis/internal/logger"
)

// Alerter forwards notable decision records to a TextNotifier. A risk lock
// is sent once per process since the engine repeats it every cycle.
type Alerter struct {
	sink    TextNotifier
	trades  bool
	timeout time.Duration

	mu         sync.Mutex
	lockedSent bool
	wg         sync.WaitGroup
}

func NewAlerter(sink TextNotifier, notifyTrades bool, timeout time.Duration) *Alerter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Alerter{sink: sink, trades: notifyTrades, timeout: timeout}
}

// ObserveDecision implements decision.Observer. Sending never blocks the caller.
func (a *Alerter) ObserveDecision(rec decision.Record) {
	if !a.wants(rec) {
		return
	}
	msg := renderRecord(rec)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.sink.SendText(ctx, msg); err != nil {
			logger.Warnf("notifier: send %s/%s failed: %v", rec.Type, rec.Reason, err)
		}
	}()
}

// Wait blocks until in-flight sends finish.
func (a *Alerter) Wait() { a.wg.Wait() }

func (a *Alerter) wants(rec decision.Record) bool {
	switch rec.Type {
	case decision.TypeRiskLocked:
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.lockedSent {
			return false
		}
		a.lockedSent = true
		return true
	case decision.TypeTradeExecuted:
		return a.trades
	}
	return false
}

func renderRecord(rec decision.Record) string {
	icon := "ℹ️"
	if rec.Type == decision.TypeRiskLocked {
		icon = "🚨"
	}
	keys := make([]string, 0, len(rec.Metrics))
	for k := range rec.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, rec.Metrics[k]))
	}
	return StructuredMessage{
		Icon:      icon,
		Title:     fmt.Sprintf("%s %s", rec.Type, rec.Reason),
		Sections:  []MessageSection{{Title: "metrics", Lines: lines}},
		Timestamp: rec.TS,
	}.RenderMarkdown()
}
