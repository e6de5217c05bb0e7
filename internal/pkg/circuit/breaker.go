// Package circuit stops hammering an upstream that keeps failing.
package circuit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"jarvis/internal/logger"
)

// ErrOpen is returned by Do while the breaker rejects calls.
var ErrOpen = errors.New("circuit open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// Breaker opens after threshold consecutive failures and lets a single probe
// through once cooldown has elapsed.
type Breaker struct {
	mu          sync.Mutex
	name        string
	state       State
	failures    int
	threshold   int
	cooldown    time.Duration
	lastFailure time.Time
	nowFn       func() time.Time
	onChange    func(name string, from, to State)
}

func New(name string, threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &Breaker{name: name, threshold: threshold, cooldown: cooldown, nowFn: time.Now}
}

func (b *Breaker) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if now != nil {
		b.nowFn = now
	}
}

// OnStateChange replaces the default warning log. The handler runs synchronously
// outside the lock.
func (b *Breaker) OnStateChange(fn func(name string, from, to State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Allow() bool {
	b.mu.Lock()
	var ev *transition
	allowed := true
	if b.state == StateOpen {
		if b.nowFn().Sub(b.lastFailure) >= b.cooldown {
			ev = b.moveLocked(StateHalfOpen)
		} else {
			allowed = false
		}
	}
	b.mu.Unlock()
	b.notify(ev)
	return allowed
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	var ev *transition
	if b.state == StateHalfOpen {
		ev = b.moveLocked(StateClosed)
	}
	b.failures = 0
	b.mu.Unlock()
	b.notify(ev)
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	var ev *transition
	b.failures++
	b.lastFailure = b.nowFn()
	switch b.state {
	case StateClosed:
		if b.failures >= b.threshold {
			ev = b.moveLocked(StateOpen)
		}
	case StateHalfOpen:
		ev = b.moveLocked(StateOpen)
	}
	b.mu.Unlock()
	b.notify(ev)
}

// Do runs fn if the breaker allows it and records the outcome. Context
// cancellation is not counted as an upstream failure.
func (b *Breaker) Do(ctx context.Context, fn func(context.Context) error) error {
	if !b.Allow() {
		return fmt.Errorf("%s: %w", b.name, ErrOpen)
	}
	err := fn(ctx)
	switch {
	case err == nil:
		b.RecordSuccess()
	case errors.Is(err, context.Canceled):
	default:
		b.RecordFailure()
	}
	return err
}

type transition struct {
	from, to State
	failures int
}

func (b *Breaker) moveLocked(to State) *transition {
	ev := &transition{from: b.state, to: to, failures: b.failures}
	b.state = to
	return ev
}

func (b *Breaker) notify(ev *transition) {
	if ev == nil {
		return
	}
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn(b.name, ev.from, ev.to)
		return
	}
	logger.Warnf("circuit %s: %s -> %s (failures=%d/%d, cooldown=%s)",
		b.name, ev.from, ev.to, ev.failures, b.threshold, b.cooldown)
}
