package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/internal/metrics"
)

// CachedProvider wraps a Provider with a MultiLevelCache and request
// metrics. Deterministic requests are served from cache when possible;
// everything else passes through unchanged. cache and collector may both be
// nil, leaving a plain measured or transparent wrapper.
type CachedProvider struct {
	inner   Provider
	cache   *MultiLevelCache
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewCachedProvider wraps the provider with the given cache and collector.
func NewCachedProvider(inner Provider, cache *MultiLevelCache, collector *metrics.Collector, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{inner: inner, cache: cache, metrics: collector, logger: logger}
}

func (p *CachedProvider) Name() string { return p.inner.Name() }

// HealthCheck delegates to the wrapped provider.
func (p *CachedProvider) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	return p.inner.HealthCheck(ctx)
}

// Completion serves from cache when the request is cacheable, otherwise
// delegates. Cache write failures are logged and ignored.
func (p *CachedProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if p.cache == nil || !p.cache.IsCacheable(req) {
		return p.complete(ctx, req)
	}

	key := p.cache.GenerateKey(req)
	if entry, err := p.cache.Get(ctx, key); err == nil {
		p.metrics.RecordCacheHit("llm")
		p.logger.Debug("llm cache hit",
			zap.String("provider", p.inner.Name()),
			zap.String("model", req.Model))
		return entry.Response, nil
	}
	p.metrics.RecordCacheMiss("llm")

	resp, err := p.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, &CacheEntry{Response: resp}); err != nil {
		p.logger.Warn("llm cache write failed", zap.Error(err))
	}
	return resp, nil
}

// complete calls the wrapped provider and records the request outcome.
func (p *CachedProvider) complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()
	resp, err := p.inner.Completion(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordLLMRequest(p.inner.Name(), req.Model, status, time.Since(start))
	return resp, err
}
