package scheduler

import (
	"context"
	"time"

	"jarvis/internal/logger"
)

// IntervalScheduler runs a task every Interval of wall-clock time. A task
// always finishes before the next one is scheduled, so slow runs push the
// following tick back instead of overlapping.
type IntervalScheduler struct {
	Name           string
	Interval       time.Duration
	RunImmediately bool

	ctx   context.Context
	nowFn func() time.Time
}

func NewIntervalScheduler(ctx context.Context, name string, interval time.Duration) *IntervalScheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &IntervalScheduler{
		Name:     name,
		Interval: interval,
		ctx:      ctx,
		nowFn:    time.Now,
	}
}

// Start blocks until the context is cancelled.
func (s *IntervalScheduler) Start(task func()) {
	if s == nil {
		return
	}
	if task == nil {
		logger.Warnf("IntervalScheduler[%s]: task is nil, exit", s.Name)
		return
	}
	if s.Interval <= 0 {
		logger.Warnf("IntervalScheduler[%s]: invalid interval=%s, exit", s.Name, s.Interval)
		return
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.nowFn == nil {
		s.nowFn = time.Now
	}

	startAt := s.nowFn().UTC()
	logger.Infof("IntervalScheduler[%s]: started interval=%s run_immediately=%v at=%s",
		s.Name, s.Interval, s.RunImmediately, startAt.Format(time.RFC3339))

	if s.RunImmediately {
		if s.ctx.Err() != nil {
			return
		}
		task()
	}

	var runs int64
	for {
		next := s.nowFn().Add(s.Interval)
		timer := time.NewTimer(next.Sub(s.nowFn()))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			logger.Infof("IntervalScheduler[%s]: ctx done after %d runs, uptime=%s, exit",
				s.Name, runs, s.nowFn().UTC().Sub(startAt).Truncate(time.Second))
			return
		case <-timer.C:
		}
		runs++
		logger.Debugf("IntervalScheduler[%s]: tick #%d", s.Name, runs)
		task()
	}
}
