package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/config"
	"github.com/RaghavOG/advance-rag/internal/metrics"
	"github.com/RaghavOG/advance-rag/rag"
	"github.com/RaghavOG/advance-rag/types"
)

// Step names. Routing functions return these; the engine validates them
// against each edge's allow-list.
const (
	nodeNormalize           = "normalize_user_prompt"
	nodeDecompose           = "detect_multi_query"
	nodeAmbiguity           = "ambiguity_check"
	nodeClarification       = "clarification"
	nodeRewrite             = "query_rewrite_expand"
	nodeAdaptiveTopK        = "adaptive_top_k"
	nodeRetrieve            = "retrieve_documents"
	nodeMergeRetrieval      = "merge_retrieval_results"
	nodeRetrievalFailure    = "retrieval_failure"
	nodeCompress            = "compress_context"
	nodeCompressionFallback = "compression_fallback"
	nodeGenerate            = "generate_answer"
	nodeTimeoutFailure      = "llm_timeout_failure"
	nodeCollect             = "collect_sub_answers"
	nodeAdvance             = "advance_to_next_query"
	nodeFinalMerge          = "merge_final_answers"
)

// Canned user-facing messages for the failure paths.
const (
	// RetrievalFailureAnswer is the sub-answer when no usable evidence exists.
	RetrievalFailureAnswer = "I couldn't find relevant information in the documents."
	// TimeoutFailureAnswer is the sub-answer when all generation retries are spent.
	TimeoutFailureAnswer = "The system is temporarily unable to generate a response. Please try again."

	defaultClarificationQuestion = "Could you please clarify your question?"
)

// Nodes bundles the collaborators every step needs. All collaborator calls
// degrade in place; a node never aborts the run.
type Nodes struct {
	cfg        *config.Config
	ambiguity  *rag.AmbiguityChecker
	rewriter   *rag.Rewriter
	retriever  *rag.Retriever
	compressor *rag.Compressor
	generator  *rag.Generator
	metrics    *metrics.Collector
	logger     *zap.Logger
}

// NewNodes creates the node set. collector may be nil.
func NewNodes(
	cfg *config.Config,
	ambiguity *rag.AmbiguityChecker,
	rewriter *rag.Rewriter,
	retriever *rag.Retriever,
	compressor *rag.Compressor,
	generator *rag.Generator,
	collector *metrics.Collector,
	logger *zap.Logger,
) *Nodes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nodes{
		cfg:        cfg,
		ambiguity:  ambiguity,
		rewriter:   rewriter,
		retriever:  retriever,
		compressor: compressor,
		generator:  generator,
		metrics:    collector,
		logger:     logger,
	}
}

// Normalize trims and collapses whitespace in the raw prompt.
func (n *Nodes) Normalize(ctx context.Context, s *State) Update {
	normalized := rag.NormalizePrompt(s.RawPrompt)
	n.logger.Info("prompt normalized",
		zap.String("run_id", s.RunID),
		zap.String("prompt", truncate(normalized, 80)))
	return Update{NormalizedPrompt: strPtr(normalized)}
}

// Decompose splits the prompt into independent sub-questions and seeds the
// per-run loop fields. Overflow truncates with a non-fatal warning. A seeded
// ClarificationUsed (clarification resumption) is deliberately left intact.
func (n *Nodes) Decompose(ctx context.Context, s *State) Update {
	subQueries := rag.SplitQueries(s.NormalizedPrompt)
	if len(subQueries) == 0 {
		subQueries = []string{s.NormalizedPrompt}
	}

	maxSub := n.cfg.Decompose.MaxSubQueries
	update := Update{
		SubAnswers:        subAnswersPtr([]SubAnswer{}),
		GenerationRetries: intPtr(0),
	}
	if maxSub > 0 && len(subQueries) > maxSub {
		warning := fmt.Sprintf("Too many questions. Processing the first %d.", maxSub)
		n.logger.Warn("sub-query limit exceeded",
			zap.String("run_id", s.RunID),
			zap.Int("found", len(subQueries)),
			zap.Int("max", maxSub))
		subQueries = subQueries[:maxSub]
		update.Status = statusPtr(types.NewStatus(types.StatusDecompositionTruncated, warning))
	}

	n.logger.Info("prompt decomposed",
		zap.String("run_id", s.RunID),
		zap.Int("sub_queries", len(subQueries)),
		zap.Strings("queries", subQueries))

	update.SubQueries = strsPtr(subQueries)
	update.CurrentQuery = strPtr(subQueries[0])
	return update
}

// Ambiguity classifies the current sub-question via the LLM.
func (n *Nodes) Ambiguity(ctx context.Context, s *State) Update {
	res := n.ambiguity.Check(ctx, s.CurrentQuery)
	n.logger.Info("ambiguity checked",
		zap.String("run_id", s.RunID),
		zap.Bool("is_ambiguous", res.IsAmbiguous),
		zap.String("clarification_question", res.ClarificationQuestion))
	return Update{
		IsAmbiguous:           boolPtr(res.IsAmbiguous),
		ClarificationQuestion: strPtr(res.ClarificationQuestion),
	}
}

// Clarification surfaces the clarification question to the caller and ends
// the run. The caller combines the question with the user's answer and
// re-invokes with ClarificationUsed seeded true.
func (n *Nodes) Clarification(ctx context.Context, s *State) Update {
	cq := s.ClarificationQuestion
	if cq == "" {
		cq = defaultClarificationQuestion
	}
	n.logger.Info("clarification needed",
		zap.String("run_id", s.RunID),
		zap.String("question", cq))
	return Update{
		ClarificationUsed: boolPtr(true),
		ClarifiedQuery:    strPtr(""),
		Status:            statusPtr(types.NewStatus(types.StatusClarificationNeeded, cq)),
	}
}

// Rewrite expands the effective query into alternate phrasings.
func (n *Nodes) Rewrite(ctx context.Context, s *State) Update {
	rewrites := n.rewriter.Rewrite(ctx, s.EffectiveQuery())
	n.logger.Info("query rewritten",
		zap.String("run_id", s.RunID),
		zap.Int("rewrites", len(rewrites)))
	return Update{RewrittenQueries: strsPtr(rewrites)}
}

// AdaptiveTopK picks the per-rewrite retrieval depth.
func (n *Nodes) AdaptiveTopK(ctx context.Context, s *State) Update {
	rewriteCount := len(s.RewrittenQueries)
	if rewriteCount == 0 {
		rewriteCount = 1
	}
	perK := rag.AdaptiveTopK(s.CurrentQuery, rewriteCount, n.cfg.Retrieval.TopKText)
	n.logger.Info("adaptive top-k decided",
		zap.String("run_id", s.RunID),
		zap.Int("top_k_text", perK),
		zap.Int("top_k_image", n.cfg.Retrieval.TopKImage),
		zap.Int("top_k_audio", n.cfg.Retrieval.TopKAudio))
	return Update{
		TopKText:  intPtr(perK),
		TopKImage: intPtr(n.cfg.Retrieval.TopKImage),
		TopKAudio: intPtr(n.cfg.Retrieval.TopKAudio),
	}
}

// Retrieve runs vector search per rewrite plus the hypothetical-probe pass.
// The probe text exists only to be embedded; it is discarded right after.
func (n *Nodes) Retrieve(ctx context.Context, s *State) Update {
	rewrites := s.RewrittenQueries
	if len(rewrites) == 0 {
		rewrites = []string{s.CurrentQuery}
	}
	k := s.TopKText
	if k <= 0 {
		k = n.cfg.Retrieval.TopKText
	}

	probeText := n.rewriter.HypotheticalDocument(ctx, s.EffectiveQuery())
	docs := n.retriever.Retrieve(ctx, rewrites, probeText, k)
	n.metrics.RecordRetrievalDocs("raw", len(docs))
	return Update{RetrievedDocsWithScores: docsPtr(docs)}
}

// MergeRetrieval deduplicates and ranks the raw candidates.
func (n *Nodes) MergeRetrieval(ctx context.Context, s *State) Update {
	topK := s.TopKText
	if topK <= 0 {
		topK = n.cfg.Retrieval.TopKText
	}
	merged := rag.MergeScoredDocuments(s.RetrievedDocsWithScores, topK)
	n.metrics.RecordRetrievalDocs("merged", len(merged))
	n.logger.Info("retrieval merged",
		zap.String("run_id", s.RunID),
		zap.Int("raw", len(s.RetrievedDocsWithScores)),
		zap.Int("final", len(merged)))
	return Update{FinalRetrievedDocs: docsPtr(merged)}
}

// RetrievalFailure answers the sub-query with the canned no-evidence
// message. It counts as a completed sub-answer so the loop still advances.
func (n *Nodes) RetrievalFailure(ctx context.Context, s *State) Update {
	n.logger.Warn("retrieval failure",
		zap.String("run_id", s.RunID),
		zap.String("query", truncate(s.CurrentQuery, 60)))
	return Update{
		AnswerText:  strPtr(RetrievalFailureAnswer),
		FinalAnswer: strPtr(RetrievalFailureAnswer),
		Status:      statusPtr(types.NewStatus(types.StatusRetrievalFailure, "")),
	}
}

// Compress produces the focused context via the LLM.
func (n *Nodes) Compress(ctx context.Context, s *State) Update {
	compressed, err := n.compressor.Compress(ctx, s.FinalRetrievedDocs, s.EffectiveQuery())
	if err != nil {
		n.logger.Warn("compression failed",
			zap.String("run_id", s.RunID),
			zap.Error(err))
		return Update{
			CompressedContext: strPtr(""),
			Status:            statusPtr(types.NewStatus(types.StatusCompressionError, err.Error())),
		}
	}
	return Update{CompressedContext: strPtr(compressed)}
}

// CompressionFallback builds the extractive context after a compression
// failure. Compression never blocks the pipeline.
func (n *Nodes) CompressionFallback(ctx context.Context, s *State) Update {
	n.logger.Warn("using extractive compression fallback", zap.String("run_id", s.RunID))
	return Update{
		CompressedContext: strPtr(rag.ExtractiveFallback(s.FinalRetrievedDocs)),
		Status:            statusPtr(types.NewStatus(types.StatusCompressionFallback, "")),
	}
}

// Generate produces the grounded answer, with a bounded self-retry on
// failure. Success clears a pending retry status; the fallback flag from a
// degraded compression is left in place.
func (n *Nodes) Generate(ctx context.Context, s *State) Update {
	n.logger.Info("generating answer",
		zap.String("run_id", s.RunID),
		zap.Int("retry", s.GenerationRetries))

	answer, err := n.generator.Generate(ctx, s.CompressedContext, s.EffectiveQuery())
	if err == nil {
		update := Update{
			AnswerText:        strPtr(answer),
			GenerationRetries: intPtr(s.GenerationRetries),
		}
		if s.Status.Is(types.StatusGenerationRetry) {
			update.Status = statusPtr(types.Status{})
		}
		return update
	}

	if s.GenerationRetries < n.cfg.Generation.MaxRetries {
		n.logger.Warn("generation failed, retrying",
			zap.String("run_id", s.RunID),
			zap.Int("retries", s.GenerationRetries+1),
			zap.Error(err))
		return Update{
			AnswerText:        strPtr(""),
			GenerationRetries: intPtr(s.GenerationRetries + 1),
			Status:            statusPtr(types.NewStatus(types.StatusGenerationRetry, err.Error())),
		}
	}

	n.logger.Error("generation failed, retries exhausted",
		zap.String("run_id", s.RunID),
		zap.Int("retries", s.GenerationRetries),
		zap.Error(err))
	return Update{
		AnswerText:        strPtr(""),
		GenerationRetries: intPtr(s.GenerationRetries),
		Status:            statusPtr(types.NewStatus(types.StatusGenerationFailed, err.Error())),
	}
}

// TimeoutFailure answers the sub-query with the canned apology after the
// retry budget is spent. Like retrieval failure, it completes the sub-answer.
func (n *Nodes) TimeoutFailure(ctx context.Context, s *State) Update {
	n.logger.Error("generation retries exhausted",
		zap.String("run_id", s.RunID),
		zap.Int("retries", s.GenerationRetries))
	return Update{
		AnswerText:  strPtr(TimeoutFailureAnswer),
		FinalAnswer: strPtr(TimeoutFailureAnswer),
		Status:      statusPtr(types.NewStatus(types.StatusTimeoutFailure, "")),
	}
}

// Collect appends the finished question/answer pair to the progress list.
func (n *Nodes) Collect(ctx context.Context, s *State) Update {
	subAnswers := append([]SubAnswer(nil), s.SubAnswers...)
	if s.CurrentQuery != "" && s.AnswerText != "" {
		subAnswers = append(subAnswers, SubAnswer{
			Question: s.CurrentQuery,
			Answer:   s.AnswerText,
		})
	}
	n.logger.Info("sub-answer collected",
		zap.String("run_id", s.RunID),
		zap.Int("answered", len(subAnswers)),
		zap.Int("total", len(s.SubQueries)))
	return Update{SubAnswers: subAnswersPtr(subAnswers)}
}

// Advance pulls the next unanswered sub-query into CurrentQuery and resets
// every per-question transient field, clarification state included.
func (n *Nodes) Advance(ctx context.Context, s *State) Update {
	next := ""
	if len(s.SubAnswers) < len(s.SubQueries) {
		next = s.SubQueries[len(s.SubAnswers)]
	}
	n.logger.Info("advancing to next sub-query",
		zap.String("run_id", s.RunID),
		zap.String("next", truncate(next, 60)))
	return Update{
		CurrentQuery:            strPtr(next),
		IsAmbiguous:             boolPtr(false),
		ClarificationQuestion:   strPtr(""),
		ClarificationUsed:       boolPtr(false),
		ClarifiedQuery:          strPtr(""),
		RewrittenQueries:        strsPtr(nil),
		RetrievedDocsWithScores: docsPtr(nil),
		FinalRetrievedDocs:      docsPtr(nil),
		CompressedContext:       strPtr(""),
		AnswerText:              strPtr(""),
		GenerationRetries:       intPtr(0),
		Status:                  statusPtr(types.Status{}),
	}
}

// FinalMerge renders the deterministic sub-answer report, or passes the
// single answer through when no sub-answers were collected.
func (n *Nodes) FinalMerge(ctx context.Context, s *State) Update {
	n.logger.Info("merging final answers",
		zap.String("run_id", s.RunID),
		zap.Int("sub_answers", len(s.SubAnswers)))
	if len(s.SubAnswers) == 0 {
		return Update{FinalAnswer: strPtr(s.AnswerText)}
	}
	return Update{FinalAnswer: strPtr(FormatSubAnswers(s.SubAnswers))}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
