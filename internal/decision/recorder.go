package decision

import (
	"context"
	"sync"
	"time"

	"jarvis/internal/logger"
)

// Sink persists records, e.g. the append-only event log.
type Sink interface {
	Append(rec Record) error
}

// Explainer turns a record into prose. Calls run off the decision loop.
type Explainer interface {
	Generate(ctx context.Context, rec Record) (string, error)
}

// Observer is told about every record synchronously, e.g. for metrics.
type Observer interface {
	ObserveDecision(rec Record)
}

// Recorder stamps, logs and fans out decision records. Sink failures are
// logged and never surface to the caller.
type Recorder struct {
	sink           Sink
	explainer      Explainer
	observers      []Observer
	explainTimeout time.Duration

	nowFn func() time.Time
	wg    sync.WaitGroup
}

type RecorderOption func(*Recorder)

func WithExplainer(e Explainer, timeout time.Duration) RecorderOption {
	return func(r *Recorder) {
		r.explainer = e
		r.explainTimeout = timeout
	}
}

func WithObserver(o Observer) RecorderOption {
	return func(r *Recorder) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.nowFn = now
		}
	}
}

func NewRecorder(sink Sink, opts ...RecorderOption) *Recorder {
	r := &Recorder{sink: sink, nowFn: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Record builds the record, writes it out and starts a detached
// explanation. The returned record is the one that was written.
func (r *Recorder) Record(typ Type, reason string, metrics Metrics) Record {
	rec := Record{
		TS:      r.nowFn().UTC(),
		Type:    typ,
		Reason:  reason,
		Metrics: metrics.Clone(),
	}
	if raw, err := rec.JSON(); err == nil {
		logger.Infof("DECISION: %s", raw)
	} else {
		logger.Errorf("DECISION: encode failed type=%s reason=%s err=%v", typ, reason, err)
	}
	if r.sink != nil {
		if err := r.sink.Append(rec); err != nil {
			logger.Errorf("failed to write to events log: %v", err)
		}
	}
	for _, o := range r.observers {
		o.ObserveDecision(rec)
	}
	if r.explainer != nil {
		r.wg.Add(1)
		go r.explain(rec.Clone())
	}
	return rec
}

func (r *Recorder) explain(rec Record) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			logger.Errorf("explainer panic: %v", p)
		}
	}()
	ctx := context.Background()
	if r.explainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.explainTimeout)
		defer cancel()
	}
	text, err := r.explainer.Generate(ctx, rec)
	if err != nil {
		logger.Errorf("explainer failed: %v", err)
		return
	}
	logger.Infof("EXPLAINER: %s", text)
}

// Wait blocks until every explanation started so far has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
