// Package advancerag provides a top-level convenience entry point for
// building the query-answering pipeline with minimal boilerplate.
//
// Usage:
//
//	import advancerag "github.com/RaghavOG/advance-rag"
//
//	eng, err := advancerag.New(
//		advancerag.WithConfig(cfg),
//		advancerag.WithProvider(myProvider),
//		advancerag.WithVectorStore(myStore),
//	)
//	state, err := eng.Ask(ctx, "What is a vector index? And also how is it built?")
package advancerag

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/config"
	"github.com/RaghavOG/advance-rag/graph"
	"github.com/RaghavOG/advance-rag/internal/metrics"
	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/llm/embedding"
	"github.com/RaghavOG/advance-rag/rag"
)

// Engine is the assembled pipeline plus its collaborators.
type Engine struct {
	cfg      *config.Config
	pipeline *graph.Pipeline
	store    rag.VectorStore
	logger   *zap.Logger
}

// Option configures the engine created by [New].
type Option func(*options)

type options struct {
	cfg       *config.Config
	provider  llm.Provider
	embedder  embedding.Provider
	store     rag.VectorStore
	logger    *zap.Logger
	collector *metrics.Collector
}

// WithConfig sets the full configuration. Defaults are used when omitted.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithProvider sets the chat provider. Required.
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithEmbedder sets the embedding provider used for the hypothetical-probe
// retrieval pass and the built-in in-memory store.
func WithEmbedder(e embedding.Provider) Option {
	return func(o *options) { o.embedder = e }
}

// WithVectorStore sets the vector store. When omitted an in-memory store is
// built from the embedder.
func WithVectorStore(s rag.VectorStore) Option {
	return func(o *options) { o.store = s }
}

// WithLogger sets a custom zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets a metrics collector.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

// New builds the pipeline. A provider is required; a store or an embedder
// must be supplied so retrieval has somewhere to search.
func New(opts ...Option) (*Engine, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.cfg == nil {
		o.cfg = config.DefaultConfig()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.store == nil {
		if o.embedder == nil {
			return nil, fmt.Errorf("advancerag: a vector store or an embedder is required")
		}
		o.store = rag.NewInMemoryVectorStore(o.embedder, o.logger)
	}

	pipeline, err := graph.NewPipeline(o.cfg, graph.Dependencies{
		Provider: o.provider,
		Embedder: o.embedder,
		Store:    o.store,
	}, o.logger, o.collector)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      o.cfg,
		pipeline: pipeline,
		store:    o.store,
		logger:   o.logger,
	}, nil
}

// Ask runs one prompt through the pipeline.
func (e *Engine) Ask(ctx context.Context, prompt string) (*graph.State, error) {
	return e.pipeline.Invoke(ctx, graph.Input{RawPrompt: prompt})
}

// Resume re-invokes after a clarification exit. clarifiedQuery should be the
// original question combined with the user's clarification answer.
func (e *Engine) Resume(ctx context.Context, rawPrompt, clarifiedQuery string) (*graph.State, error) {
	return e.pipeline.Invoke(ctx, graph.Input{
		RawPrompt:         rawPrompt,
		ClarificationUsed: true,
		ClarifiedQuery:    clarifiedQuery,
	})
}

// Store exposes the vector store for document ingestion.
func (e *Engine) Store() rag.VectorStore {
	return e.store
}
