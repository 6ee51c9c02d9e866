package rag

import (
	"context"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/llm/embedding"
)

// probeConfidence is assigned to probe-vector results, which carry no native
// score.
const probeConfidence = 0.5

// Retriever runs vector searches per rewritten query and through the
// hypothetical-probe vector. Every failure degrades instead of aborting:
// scored search falls back to unscored search at confidence 0, and probe
// retrieval is skipped entirely on error.
type Retriever struct {
	store    VectorStore
	embedder embedding.Provider
	logger   *zap.Logger
}

// NewRetriever creates a retriever.
func NewRetriever(store VectorStore, embedder embedding.Provider, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{store: store, embedder: embedder, logger: logger}
}

// Retrieve collects unmerged candidates for every rewrite plus the probe
// text. Raw backend scores are normalized to [0,1] confidences per the
// store's native semantics.
func (r *Retriever) Retrieve(ctx context.Context, rewrites []string, probeText string, k int) []ScoredDocument {
	semantics := r.store.ScoreSemantics()
	results := make([]ScoredDocument, 0, len(rewrites)*k)

	for rewriteID, rq := range rewrites {
		hits, err := r.store.SimilaritySearchWithScore(ctx, rq, k)
		if err != nil {
			r.logger.Warn("scored search failed, falling back to unscored",
				zap.Int("rewrite_id", rewriteID),
				zap.Error(err))
			docs, err2 := r.store.SimilaritySearch(ctx, rq, k)
			if err2 != nil {
				r.logger.Warn("unscored fallback search failed, skipping rewrite",
					zap.Int("rewrite_id", rewriteID),
					zap.Error(err2))
				continue
			}
			for _, d := range docs {
				d.Metadata.RewriteID = rewriteID
				results = append(results, ScoredDocument{Document: d, Confidence: 0})
			}
			continue
		}

		for _, h := range hits {
			doc := h.Document
			doc.Metadata.RewriteID = rewriteID
			results = append(results, ScoredDocument{
				Document:   doc,
				Confidence: NormalizeScore(h.RawScore, semantics),
			})
		}
	}

	if probeText != "" {
		results = append(results, r.probeSearch(ctx, probeText, k)...)
	}

	r.logger.Info("retrieval complete",
		zap.Int("rewrites", len(rewrites)),
		zap.Int("raw_results", len(results)))
	return results
}

// probeSearch embeds the probe text and searches by vector. Probe results
// get a fixed neutral confidence since no native score exists on that path.
func (r *Retriever) probeSearch(ctx context.Context, probeText string, k int) []ScoredDocument {
	if r.embedder == nil {
		return nil
	}

	vec, err := r.embedder.EmbedQuery(ctx, probeText)
	if err != nil {
		r.logger.Warn("probe embedding failed, skipping probe retrieval", zap.Error(err))
		return nil
	}

	docs, err := r.store.SimilaritySearchByVector(ctx, vec, k)
	if err != nil {
		r.logger.Warn("probe vector search failed, skipping probe retrieval", zap.Error(err))
		return nil
	}

	results := make([]ScoredDocument, 0, len(docs))
	for _, doc := range docs {
		doc.Metadata.Probe = true
		results = append(results, ScoredDocument{
			Document:   doc,
			Confidence: probeConfidence,
		})
	}

	r.logger.Debug("probe retrieval complete", zap.Int("docs", len(results)))
	return results
}
