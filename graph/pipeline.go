package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/config"
	"github.com/RaghavOG/advance-rag/internal/metrics"
	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/llm/embedding"
	"github.com/RaghavOG/advance-rag/rag"
)

// Dependencies are the external collaborators a pipeline needs. Provider and
// Store are required; Embedder enables the hypothetical-probe retrieval pass
// and may be nil; Counter may be nil to use a length-based estimate.
type Dependencies struct {
	Provider llm.Provider
	Embedder embedding.Provider
	Store    rag.VectorStore
	Counter  rag.TokenCounter
}

// Input starts (or resumes) one run. On resumption after a clarification,
// ClarificationUsed must be true and ClarifiedQuery must carry the original
// question combined with the user's answer.
type Input struct {
	RawPrompt         string
	ClarificationUsed bool
	ClarifiedQuery    string
}

// Pipeline is the assembled query-answering graph. It is safe for
// concurrent use: every Invoke threads its own state.
type Pipeline struct {
	cfg     *config.Config
	engine  *Engine
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewPipeline wires the full graph from configuration and collaborators.
func NewPipeline(cfg *config.Config, deps Dependencies, logger *zap.Logger, collector *metrics.Collector) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("pipeline: nil config")
	}
	if deps.Provider == nil {
		return nil, fmt.Errorf("pipeline: nil LLM provider")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("pipeline: nil vector store")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ambiguity := rag.NewAmbiguityChecker(deps.Provider, rag.AmbiguityConfig{
		Enabled: cfg.Ambiguity.Enabled,
		Model:   firstNonEmpty(cfg.Ambiguity.Model, cfg.LLM.DefaultModel),
		Timeout: cfg.Ambiguity.Timeout,
	}, logger)

	rewriter := rag.NewRewriter(deps.Provider, rag.RewriterConfig{
		Enabled:     cfg.Rewrite.Enabled,
		Model:       firstNonEmpty(cfg.Rewrite.Model, cfg.LLM.DefaultModel),
		MaxRewrites: cfg.Rewrite.MaxRewrites,
		MaxTokens:   cfg.Rewrite.MaxTokens,
		Temperature: cfg.Rewrite.Temperature,
		Timeout:     cfg.Rewrite.Timeout,
	}, logger)

	retriever := rag.NewRetriever(deps.Store, deps.Embedder, logger)

	counter := deps.Counter
	if counter == nil {
		counter = rag.NewTokenCounter(firstNonEmpty(cfg.Compression.TokenizerModel, cfg.Compression.Model))
	}
	compressor := rag.NewCompressor(deps.Provider, counter, rag.CompressorConfig{
		Model:            firstNonEmpty(cfg.Compression.Model, cfg.LLM.DefaultModel),
		MaxTokens:        cfg.Compression.MaxTokens,
		MaxContextTokens: cfg.Compression.MaxContextTokens,
		Timeout:          cfg.Compression.Timeout,
	}, logger)

	generator := rag.NewGenerator(deps.Provider, rag.GeneratorConfig{
		Model:           firstNonEmpty(cfg.Generation.Model, cfg.LLM.DefaultModel),
		Temperature:     float32(cfg.Generation.Temperature),
		MaxOutputTokens: cfg.Generation.MaxOutputTokens,
		Timeout:         cfg.Generation.Timeout,
	}, logger)

	nodes := NewNodes(cfg, ambiguity, rewriter, retriever, compressor, generator, collector, logger)
	engine := buildGraph(nodes, logger, collector)
	if err := engine.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		metrics: collector,
	}, nil
}

// buildGraph wires all sixteen steps.
func buildGraph(n *Nodes, logger *zap.Logger, collector *metrics.Collector) *Engine {
	e := NewEngine(logger, collector)

	e.AddNode(nodeNormalize, n.Normalize).
		AddNode(nodeDecompose, n.Decompose).
		AddNode(nodeAmbiguity, n.Ambiguity).
		AddNode(nodeClarification, n.Clarification).
		AddNode(nodeRewrite, n.Rewrite).
		AddNode(nodeAdaptiveTopK, n.AdaptiveTopK).
		AddNode(nodeRetrieve, n.Retrieve).
		AddNode(nodeMergeRetrieval, n.MergeRetrieval).
		AddNode(nodeRetrievalFailure, n.RetrievalFailure).
		AddNode(nodeCompress, n.Compress).
		AddNode(nodeCompressionFallback, n.CompressionFallback).
		AddNode(nodeGenerate, n.Generate).
		AddNode(nodeTimeoutFailure, n.TimeoutFailure).
		AddNode(nodeCollect, n.Collect).
		AddNode(nodeAdvance, n.Advance).
		AddNode(nodeFinalMerge, n.FinalMerge)

	e.SetEntryPoint(nodeNormalize)

	e.AddEdge(nodeNormalize, nodeDecompose)
	e.AddEdge(nodeDecompose, nodeAmbiguity)

	e.AddConditionalEdges(nodeAmbiguity, n.routeAmbiguity,
		nodeClarification, nodeRewrite)

	// Clarification deliberately exits the graph; the caller resumes.
	e.AddConditionalEdges(nodeClarification, n.routeClarification, End)

	e.AddEdge(nodeRewrite, nodeAdaptiveTopK)
	e.AddEdge(nodeAdaptiveTopK, nodeRetrieve)
	e.AddEdge(nodeRetrieve, nodeMergeRetrieval)

	e.AddConditionalEdges(nodeMergeRetrieval, n.routeRetrieval,
		nodeRetrievalFailure, nodeCompress)

	// Failure paths feed collect so the multi-question loop keeps advancing.
	e.AddEdge(nodeRetrievalFailure, nodeCollect)

	e.AddConditionalEdges(nodeCompress, n.routeCompression,
		nodeCompressionFallback, nodeGenerate)
	e.AddEdge(nodeCompressionFallback, nodeGenerate)

	e.AddConditionalEdges(nodeGenerate, n.routeGeneration,
		nodeGenerate, nodeTimeoutFailure, nodeCollect)
	e.AddEdge(nodeTimeoutFailure, nodeCollect)

	e.AddConditionalEdges(nodeCollect, n.routeCollect,
		nodeAdvance, nodeFinalMerge)
	e.AddEdge(nodeAdvance, nodeAmbiguity)

	e.AddEdge(nodeFinalMerge, End)

	return e
}

// Invoke runs one prompt through the graph synchronously and returns the
// final state. A clarification exit returns a state whose Status carries
// StatusClarificationNeeded with the question in Detail.
func (p *Pipeline) Invoke(ctx context.Context, in Input) (*State, error) {
	state := NewState(in.RawPrompt)
	state.ClarificationUsed = in.ClarificationUsed
	state.ClarifiedQuery = in.ClarifiedQuery

	p.logger.Info("run started",
		zap.String("run_id", state.RunID),
		zap.Bool("resumed", in.ClarificationUsed))

	start := time.Now()
	err := p.engine.Run(ctx, state)
	elapsed := time.Since(start)
	if err != nil {
		p.metrics.RecordRun("error", elapsed)
		return state, err
	}

	runStatus := string(state.Status.Code)
	if runStatus == "" {
		runStatus = "ok"
	}
	p.metrics.RecordRun(runStatus, elapsed)
	p.logger.Info("run finished",
		zap.String("run_id", state.RunID),
		zap.String("status", state.Status.String()),
		zap.Int("sub_answers", len(state.SubAnswers)),
		zap.Duration("elapsed", elapsed))
	return state, nil
}

// FormatSubAnswers renders the numbered question/answer report.
func FormatSubAnswers(subAnswers []SubAnswer) string {
	var lines []string
	for i, sa := range subAnswers {
		lines = append(lines, fmt.Sprintf("Question %d: %s", i+1, sa.Question))
		lines = append(lines, "Answer:")
		lines = append(lines, sa.Answer)
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n \t")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
