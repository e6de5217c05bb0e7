package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/decision"
)

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) SendText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

func TestRenderMarkdown(t *testing.T) {
	out := StructuredMessage{
		Icon:     "🚨",
		Title:    "RISK_LOCKED",
		Sections: []MessageSection{{Title: "metrics", Lines: []string{"equity: 975", " ", "x```y"}}},
		Footer:   "restart required",
	}.RenderMarkdown()
	assert.True(t, strings.HasPrefix(out, "🚨 RISK_LOCKED\n\n```\nmetrics\n- equity: 975\n- x'''y\n```"))
	assert.True(t, strings.HasSuffix(out, "restart required"))
}

func TestAlerterSendsLockOnce(t *testing.T) {
	sink := &captureNotifier{}
	a := NewAlerter(sink, false, time.Second)
	lock := decision.Record{Type: decision.TypeRiskLocked, Reason: decision.ReasonDailyDrawdownLimit, Metrics: decision.Metrics{"equity": 975.0}}

	a.ObserveDecision(lock)
	a.ObserveDecision(lock)
	a.ObserveDecision(decision.Record{Type: decision.TypeTradeExecuted, Reason: "ENTRY_BUY"})
	a.ObserveDecision(decision.Record{Type: decision.TypeTradeSkipped, Reason: decision.ReasonWeakSignal})
	a.Wait()

	require.Len(t, sink.msgs, 1)
	assert.Contains(t, sink.msgs[0], "RISK_LOCKED DAILY_DRAWDOWN_LIMIT")
	assert.Contains(t, sink.msgs[0], "equity: 975")
}

func TestAlerterTradesOptIn(t *testing.T) {
	sink := &captureNotifier{}
	a := NewAlerter(sink, true, time.Second)
	a.ObserveDecision(decision.Record{Type: decision.TypeTradeExecuted, Reason: "EXIT_TIME_STOP"})
	a.Wait()
	require.Len(t, sink.msgs, 1)
}

func TestTelegramRetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "42", body["chat_id"])
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN", "42")
	tg.BaseURL = srv.URL
	tg.backoff = time.Millisecond
	require.NoError(t, tg.SendText(context.Background(), "hi"))
	assert.Equal(t, int32(2), hits.Load())
}

func TestTelegramRequiresConfig(t *testing.T) {
	assert.Error(t, NewTelegram("", "").SendText(context.Background(), "x"))
}
