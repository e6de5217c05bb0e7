package decision

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Append(rec Record) error {
	args := m.Called(rec)
	return args.Error(0)
}

type MockExplainer struct {
	mock.Mock
}

func (m *MockExplainer) Generate(ctx context.Context, rec Record) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

type captureObserver struct {
	mu   sync.Mutex
	recs []Record
}

func (c *captureObserver) ObserveDecision(rec Record) {
	c.mu.Lock()
	c.recs = append(c.recs, rec)
	c.mu.Unlock()
}

func TestRecorderFansOut(t *testing.T) {
	fixed := time.Date(2026, 7, 1, 9, 30, 0, 0, time.FixedZone("x", 3600))
	sink := new(MockSink)
	exp := new(MockExplainer)
	obs := &captureObserver{}

	sink.On("Append", mock.MatchedBy(func(r Record) bool {
		return r.Type == TypeTradeSkipped && r.Reason == ReasonWeakSignal
	})).Return(nil).Once()
	exp.On("Generate", mock.Anything, mock.AnythingOfType("decision.Record")).Return("weak", nil).Once()

	rec := NewRecorder(sink, WithExplainer(exp, time.Second), WithObserver(obs), WithClock(func() time.Time { return fixed }))
	metrics := Metrics{MetricScore: 0.1}
	out := rec.Record(TypeTradeSkipped, ReasonWeakSignal, metrics)
	rec.Wait()

	assert.Equal(t, fixed.UTC(), out.TS)
	assert.Equal(t, time.UTC, out.TS.Location())
	require.Len(t, obs.recs, 1)
	assert.Equal(t, 0.1, obs.recs[0].Metrics[MetricScore])

	metrics[MetricScore] = 0.9
	assert.Equal(t, 0.1, out.Metrics[MetricScore], "record is detached from caller metrics")

	sink.AssertExpectations(t)
	exp.AssertExpectations(t)
}

func TestRecorderSurvivesSinkAndExplainerFailure(t *testing.T) {
	sink := new(MockSink)
	exp := new(MockExplainer)
	sink.On("Append", mock.Anything).Return(errors.New("disk full"))
	exp.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("boom"))

	rec := NewRecorder(sink, WithExplainer(exp, 0))
	assert.NotPanics(t, func() {
		rec.Record(TypeRiskLocked, ReasonDailyDrawdownLimit, nil)
	})
	rec.Wait()
	exp.AssertNumberOfCalls(t, "Generate", 1)
}

func TestRecordJSONShape(t *testing.T) {
	rec := Record{
		TS:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Type:   TypeTradeExecuted,
		Reason: "ENTRY_BUY",
	}
	raw, err := rec.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"ts":"2026-01-02T03:04:05Z","type":"TRADE_EXECUTED","reason":"ENTRY_BUY","metrics":{}}`, string(raw))
}
