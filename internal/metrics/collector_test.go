package metrics

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// promauto registers on the default registry, so every test gets its own
// namespace to avoid duplicate registration.
var collectorNamespaceSeq uint64

func nextTestNamespace() string {
	seq := atomic.AddUint64(&collectorNamespaceSeq, 1)
	return fmt.Sprintf("ragtest_%d", seq)
}

func TestNewCollector(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	assert.NotNil(t, collector)
	assert.NotNil(t, collector.nodeExecutionsTotal)
	assert.NotNil(t, collector.runsTotal)
	assert.NotNil(t, collector.llmRequestsTotal)
	assert.NotNil(t, collector.retrievalDocs)
	assert.NotNil(t, collector.cacheHits)
}

func TestCollectorRecordNodeExecution(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordNodeExecution("retrieve_documents", "ok", 10*time.Millisecond)
	collector.RecordNodeExecution("retrieve_documents", "ok", 5*time.Millisecond)
	collector.RecordNodeExecution("generate_answer", "generation_retry", time.Second)

	assert.InDelta(t, 2, testutil.ToFloat64(
		collector.nodeExecutionsTotal.WithLabelValues("retrieve_documents", "ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(
		collector.nodeExecutionsTotal.WithLabelValues("generate_answer", "generation_retry")), 1e-9)
}

func TestCollectorRecordRun(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordRun("ok", 2*time.Second)
	collector.RecordRun("clarification_needed", time.Second)

	assert.InDelta(t, 1, testutil.ToFloat64(collector.runsTotal.WithLabelValues("ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.runsTotal.WithLabelValues("clarification_needed")), 1e-9)
}

func TestCollectorRecordLLMRequest(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordLLMRequest("openai", "gpt-4.1-mini", "ok", 300*time.Millisecond)
	collector.RecordLLMRequest("openai", "gpt-4.1-mini", "error", 100*time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(
		collector.llmRequestsTotal.WithLabelValues("openai", "gpt-4.1-mini", "ok")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(
		collector.llmRequestsTotal.WithLabelValues("openai", "gpt-4.1-mini", "error")), 1e-9)
}

func TestCollectorRecordRetrievalDocs(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordRetrievalDocs("raw", 12)
	collector.RecordRetrievalDocs("merged", 5)

	assert.Greater(t, testutil.CollectAndCount(collector.retrievalDocs), 0)
}

func TestCollectorCacheCounters(t *testing.T) {
	collector := NewCollector(nextTestNamespace(), zap.NewNop())

	collector.RecordCacheHit("llm")
	collector.RecordCacheHit("llm")
	collector.RecordCacheMiss("llm")

	assert.InDelta(t, 2, testutil.ToFloat64(collector.cacheHits.WithLabelValues("llm")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(collector.cacheMisses.WithLabelValues("llm")), 1e-9)
}

func TestCollectorNilSafe(t *testing.T) {
	var collector *Collector

	assert.NotPanics(t, func() {
		collector.RecordNodeExecution("normalize_user_prompt", "ok", time.Millisecond)
		collector.RecordRun("ok", time.Second)
		collector.RecordLLMRequest("openai", "gpt-4.1-mini", "ok", time.Millisecond)
		collector.RecordRetrievalDocs("raw", 1)
		collector.RecordCacheHit("llm")
		collector.RecordCacheMiss("llm")
	})
}
