package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAndRecovers(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("binance", 2, time.Minute)
	b.SetClock(func() time.Time { return now })
	var changes []string
	b.OnStateChange(func(_ string, from, to State) { changes = append(changes, from.String()+">"+to.String()) })

	boom := errors.New("boom")
	fail := func(context.Context) error { return boom }
	ok := func(context.Context) error { return nil }

	assert.ErrorIs(t, b.Do(context.Background(), fail), boom)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(context.Background(), fail), boom)
	assert.Equal(t, StateOpen, b.State())

	err := b.Do(context.Background(), ok)
	require.ErrorIs(t, err, ErrOpen)

	now = now.Add(time.Minute)
	require.NoError(t, b.Do(context.Background(), ok))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"CLOSED>OPEN", "OPEN>HALF-OPEN", "HALF-OPEN>CLOSED"}, changes)
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("x", 1, time.Second)
	b.SetClock(func() time.Time { return now })
	b.OnStateChange(func(string, State, State) {})

	b.RecordFailure()
	now = now.Add(2 * time.Second)
	require.True(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestCanceledContextIsNotAFailure(t *testing.T) {
	b := New("x", 1, time.Hour)
	b.OnStateChange(func(string, State, State) {})
	err := b.Do(context.Background(), func(context.Context) error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())
}
