package rag

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/llm/embedding"
)

// ScoreSemantics describes what a backend's raw score means.
type ScoreSemantics string

const (
	// SemanticsSimilarity means higher raw scores are better and already in
	// [0,1] (or close to it).
	SemanticsSimilarity ScoreSemantics = "similarity"
	// SemanticsDistance means lower raw scores are better, typically a
	// cosine or L2 distance in [0,2].
	SemanticsDistance ScoreSemantics = "distance"
	// SemanticsBoundedDistance means lower is better with no upper bound,
	// e.g. raw L2 distance.
	SemanticsBoundedDistance ScoreSemantics = "bounded_distance"
)

// NormalizeScore converts a backend-native raw score into a confidence in
// [0,1] where higher is always better.
//
//	distance          → 1 − clamp(raw, 0, 1)
//	bounded_distance  → 1 / (1 + raw)
//	similarity        → clamp(raw, 0, 1)
func NormalizeScore(raw float64, semantics ScoreSemantics) float64 {
	switch semantics {
	case SemanticsDistance:
		return 1.0 - clamp01(raw)
	case SemanticsBoundedDistance:
		if raw < 0 {
			raw = 0
		}
		return 1.0 / (1.0 + raw)
	default:
		return clamp01(raw)
	}
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// ScoredHit is a raw search result before score normalization.
type ScoredHit struct {
	Document Document `json:"document"`
	RawScore float64  `json:"raw_score"`
}

// VectorStore is the retrieval collaborator interface. Implementations
// report their native score semantics so callers can normalize confidences.
type VectorStore interface {
	// SimilaritySearchWithScore returns the top-k documents with raw
	// backend scores.
	SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]ScoredHit, error)

	// SimilaritySearch returns the top-k documents without scores. Used as
	// the fallback when the scored search fails.
	SimilaritySearch(ctx context.Context, query string, k int) ([]Document, error)

	// SimilaritySearchByVector searches with a precomputed embedding.
	SimilaritySearchByVector(ctx context.Context, vector []float64, k int) ([]Document, error)

	// ScoreSemantics reports the backend's native score semantics.
	ScoreSemantics() ScoreSemantics
}

// InMemoryVectorStore is a cosine-similarity store for tests and small
// corpora. Query embedding is delegated to the injected embedder.
type InMemoryVectorStore struct {
	documents []Document
	embedder  embedding.Provider
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewInMemoryVectorStore creates an in-memory vector store.
func NewInMemoryVectorStore(embedder embedding.Provider, logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{
		documents: make([]Document, 0),
		embedder:  embedder,
		logger:    logger,
	}
}

// ScoreSemantics reports cosine similarity, higher is better.
func (s *InMemoryVectorStore) ScoreSemantics() ScoreSemantics { return SemanticsSimilarity }

// AddDocuments stores documents, embedding any that arrive without an
// embedding.
func (s *InMemoryVectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	for i := range docs {
		if docs[i].Embedding == nil {
			if s.embedder == nil {
				return fmt.Errorf("document %d has no embedding and no embedder is configured", i)
			}
			vec, err := s.embedder.EmbedQuery(ctx, docs[i].Content)
			if err != nil {
				return fmt.Errorf("embed document %d: %w", i, err)
			}
			docs[i].Embedding = vec
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, docs...)

	s.logger.Info("documents added to vector store",
		zap.Int("count", len(docs)),
		zap.Int("total", len(s.documents)))
	return nil
}

// SimilaritySearchWithScore embeds the query and returns the top-k documents
// with cosine similarity as the raw score.
func (s *InMemoryVectorStore) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]ScoredHit, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return s.searchByVector(vec, k), nil
}

// SimilaritySearch returns the top-k documents without scores.
func (s *InMemoryVectorStore) SimilaritySearch(ctx context.Context, query string, k int) ([]Document, error) {
	hits, err := s.SimilaritySearchWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, h.Document)
	}
	return docs, nil
}

// SimilaritySearchByVector searches with a precomputed embedding.
func (s *InMemoryVectorStore) SimilaritySearchByVector(ctx context.Context, vector []float64, k int) ([]Document, error) {
	hits := s.searchByVector(vector, k)
	docs := make([]Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, h.Document)
	}
	return docs, nil
}

// Count returns the number of stored documents.
func (s *InMemoryVectorStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

func (s *InMemoryVectorStore) searchByVector(vector []float64, k int) []ScoredHit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]ScoredHit, 0, len(s.documents))
	for _, doc := range s.documents {
		if doc.Embedding == nil {
			continue
		}
		results = append(results, ScoredHit{
			Document: doc,
			RawScore: cosineSimilarity(vector, doc.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RawScore > results[j].RawScore
	})

	if k > len(results) {
		k = len(results)
	}
	if k < 0 {
		k = 0
	}
	return results[:k]
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0.0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
