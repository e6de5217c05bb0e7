// Package explain turns decision records into short human readable text,
// through an LLM when one is configured and a fixed template otherwise.
package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"jarvis/internal/decision"
	"jarvis/internal/logger"
)

const (
	DefaultCacheSize = 1000
	providerFallback = "fallback"
)

var errEmptyCompletion = errors.New("empty completion")

// Completer is the model call the service depends on.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Options struct {
	// Completer may be nil, in which case only fallback text is produced.
	Completer Completer
	Provider  string
	CacheSize int
}

// Service implements decision.Explainer. Identical records are explained once.
type Service struct {
	completer Completer
	provider  string
	cache     *fifoCache
	group     singleflight.Group
}

func NewService(opts Options) *Service {
	size := opts.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	provider := opts.Provider
	if provider == "" {
		provider = "openai"
	}
	return &Service{completer: opts.Completer, provider: provider, cache: newFIFOCache(size)}
}

// Generate never returns an error for a well formed record: model failures
// degrade to the deterministic text.
func (s *Service) Generate(ctx context.Context, rec decision.Record) (string, error) {
	payload, err := rec.JSON()
	if err != nil {
		return Fallback(rec), nil
	}
	key := cacheKey(payload)
	if text, ok := s.cache.Get(key); ok {
		return text, nil
	}
	v, _, _ := s.group.Do(key, func() (any, error) {
		if text, ok := s.cache.Get(key); ok {
			return text, nil
		}
		text := s.explain(ctx, rec, string(payload))
		s.cache.Put(key, text)
		return text, nil
	})
	return v.(string), nil
}

func (s *Service) explain(ctx context.Context, rec decision.Record, payload string) string {
	if s.completer == nil {
		text := Fallback(rec)
		logger.LogExplainResponse(providerFallback, text)
		return text
	}
	logger.LogExplainRequest(s.provider, LockedSystemPrompt, payload)
	start := time.Now()
	text, err := s.completer.Complete(ctx, LockedSystemPrompt, payload)
	if err != nil || text == "" {
		if err == nil {
			err = errEmptyCompletion
		}
		logger.Warnf("explainer %s failed after %s, using fallback: %v", s.provider, time.Since(start).Round(time.Millisecond), err)
		text = Fallback(rec)
		logger.LogExplainResponse(providerFallback, text)
		return text
	}
	logger.LogExplainResponse(s.provider, text)
	return text
}

func cacheKey(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
