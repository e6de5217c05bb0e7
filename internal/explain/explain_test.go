package explain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jarvis/internal/decision"
)

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

func record(typ decision.Type, reason string, metrics decision.Metrics) decision.Record {
	return decision.Record{
		TS:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Type:    typ,
		Reason:  reason,
		Metrics: metrics,
	}
}

func TestFallbackTexts(t *testing.T) {
	cases := []struct {
		name string
		rec  decision.Record
		want string
	}{
		{"spread", record(decision.TypeTradeSkipped, "SPREAD_TOO_HIGH", decision.Metrics{"spread": 0.0025}), "Trade skipped: Spread (0.0025) > Limit."},
		{"weak short", record(decision.TypeTradeSkipped, decision.ReasonWeakSignal, decision.Metrics{"score": -0.25}), "Trade skipped: Signal strength (0.25) is below threshold."},
		{"risk constraint", record(decision.TypeTradeSkipped, decision.ReasonRiskConstraint, nil), "Trade skipped: General risk constraint violation."},
		{"locked", record(decision.TypeRiskLocked, decision.ReasonDailyDrawdownLimit, nil), "CRITICAL: System locked due to DAILY_DRAWDOWN_LIMIT. Intervention required."},
		{"executed", record(decision.TypeTradeExecuted, "ENTRY_BUY", decision.Metrics{"volatility": 0.0012}), "Executed ENTRY_BUY. Volatility: 0.0012."},
		{"other skip", record(decision.TypeTradeSkipped, decision.ReasonZeroSize, nil), "Event: TRADE_SKIPPED | Reason: ZERO_SIZE_CALC"},
		{"missing metric", record(decision.TypeTradeExecuted, "EXIT_TIME_STOP", nil), "Executed EXIT_TIME_STOP. Volatility: 0.0000."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Fallback(tc.rec))
		})
	}
}

func TestFIFOCacheEvictsOldest(t *testing.T) {
	c := newFIFOCache(2)
	c.Put("a", "1")
	c.Put("b", "2")
	c.Put("a", "1b")
	c.Put("c", "3")

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Equal(t, 2, c.Len())
}

func TestServiceWithoutCompleterUsesFallback(t *testing.T) {
	svc := NewService(Options{})
	text, err := svc.Generate(context.Background(), record(decision.TypeRiskLocked, "RISK_LOCKED", nil))
	require.NoError(t, err)
	assert.Equal(t, "CRITICAL: System locked due to RISK_LOCKED. Intervention required.", text)
}

func TestServiceCachesByRecordContent(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, LockedSystemPrompt, mock.AnythingOfType("string")).Return("Long executed.", nil).Once()
	svc := NewService(Options{Completer: m, CacheSize: 4})

	rec := record(decision.TypeTradeExecuted, "ENTRY_BUY", decision.Metrics{"score": 0.8})
	for i := 0; i < 3; i++ {
		text, err := svc.Generate(context.Background(), rec)
		require.NoError(t, err)
		assert.Equal(t, "Long executed.", text)
	}
	m.AssertExpectations(t)
}

func TestServiceFallsBackOnError(t *testing.T) {
	m := new(MockCompleter)
	m.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("boom")).Once()
	svc := NewService(Options{Completer: m})

	text, err := svc.Generate(context.Background(), record(decision.TypeTradeSkipped, decision.ReasonWeakSignal, decision.Metrics{"score": 0.1}))
	require.NoError(t, err)
	assert.Equal(t, "Trade skipped: Signal strength (0.10) is below threshold.", text)
}

type slowCompleter struct {
	calls atomic.Int32
	gate  chan struct{}
}

func (s *slowCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	s.calls.Add(1)
	<-s.gate
	return "once", nil
}

func TestServiceCollapsesConcurrentCalls(t *testing.T) {
	sc := &slowCompleter{gate: make(chan struct{})}
	svc := NewService(Options{Completer: sc})
	rec := record(decision.TypeTradeSkipped, "SPREAD_TOO_HIGH", decision.Metrics{"spread": 0.01})

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Generate(context.Background(), rec)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(sc.gate)
	wg.Wait()

	assert.Equal(t, int32(1), sc.calls.Load())
	for _, r := range results {
		assert.Equal(t, "once", r)
	}
}

func TestOpenAIClientRequestShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4-turbo", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Explained.  "}}]}`))
	}))
	defer srv.Close()

	c := &OpenAIClient{BaseURL: srv.URL + "/v1/chat/completions/", APIKey: "sk-test", Model: "gpt-4-turbo"}
	out, err := c.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "Explained.", out)
}

func TestOpenAIClientRetriesOn429(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	var waited []time.Duration
	c := &OpenAIClient{BaseURL: srv.URL, sleep: func(_ context.Context, d time.Duration) error {
		waited = append(waited, d)
		return nil
	}}
	out, err := c.Complete(context.Background(), "", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []time.Duration{time.Second}, waited)
}

func TestOpenAIClientSurfacesErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key"}}`))
	}))
	defer srv.Close()

	c := &OpenAIClient{BaseURL: srv.URL}
	_, err := c.Complete(context.Background(), "", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401: invalid key")
}

func TestRetryDelayBackoff(t *testing.T) {
	assert.Equal(t, 800*time.Millisecond, retryDelay("", 0))
	assert.Equal(t, 1600*time.Millisecond, retryDelay("bogus", 1))
	assert.Equal(t, 8*time.Second, retryDelay("", 5))
	assert.Equal(t, 3*time.Second, retryDelay("3", 0))
}
