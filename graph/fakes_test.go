package graph

import (
	"context"
	"strings"
	"time"

	"github.com/RaghavOG/advance-rag/config"
	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/rag"
)

// scriptedProvider answers each pipeline LLM call by recognizing its system
// prompt, so a single provider drives a whole end-to-end run.
type scriptedProvider struct {
	ambiguityJSON string
	rewriteJSON   string
	probeText     string
	compressText  string
	compressErr   error
	answerText    string
	answerErr     error

	ambiguityCalls int
	rewriteCalls   int
	probeCalls     int
	compressCalls  int
	answerCalls    int
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{
		ambiguityJSON: `{"is_ambiguous": false, "clarification_question": null}`,
		rewriteJSON:   `["alternate phrasing"]`,
		probeText:     "A hypothetical reference paragraph.",
		compressText:  "Compressed evidence.",
		answerText:    "Retrieved facts / evidence:\n- fact\n\nReasoning / synthesis:\n- done",
	}
}

func (p *scriptedProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	system := req.Messages[0].Content

	var text string
	var err error
	switch {
	case strings.Contains(system, "whether a user's question is ambiguous"):
		p.ambiguityCalls++
		text = p.ambiguityJSON
	case strings.Contains(system, "alternative search queries"):
		p.rewriteCalls++
		text = p.rewriteJSON
	case strings.Contains(system, "reference-style paragraph"):
		p.probeCalls++
		text = p.probeText
	case strings.Contains(system, "context compressor"):
		p.compressCalls++
		text, err = p.compressText, p.compressErr
	case strings.Contains(system, "retrieval-augmented assistant"):
		p.answerCalls++
		text, err = p.answerText, p.answerErr
	default:
		text = "unexpected prompt"
	}
	if err != nil {
		return nil, err
	}
	return &llm.ChatResponse{
		Model: req.Model,
		Choices: []llm.ChatChoice{
			{Message: llm.Message{Role: llm.RoleAssistant, Content: text}},
		},
		CreatedAt: time.Now(),
	}, nil
}

func (p *scriptedProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (p *scriptedProvider) Name() string { return "scripted" }

// stubStore returns the same scored hits for every query.
type stubStore struct {
	hits []rag.ScoredHit
	err  error
}

func (s *stubStore) SimilaritySearchWithScore(ctx context.Context, query string, k int) ([]rag.ScoredHit, error) {
	if s.err != nil {
		return nil, s.err
	}
	if k < len(s.hits) {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *stubStore) SimilaritySearch(ctx context.Context, query string, k int) ([]rag.Document, error) {
	hits, err := s.SimilaritySearchWithScore(ctx, query, k)
	if err != nil {
		return nil, err
	}
	docs := make([]rag.Document, 0, len(hits))
	for _, h := range hits {
		docs = append(docs, h.Document)
	}
	return docs, nil
}

func (s *stubStore) SimilaritySearchByVector(ctx context.Context, vector []float64, k int) ([]rag.Document, error) {
	return nil, nil
}

func (s *stubStore) ScoreSemantics() rag.ScoreSemantics { return rag.SemanticsSimilarity }

func storeWithHits(confidences ...float64) *stubStore {
	hits := make([]rag.ScoredHit, 0, len(confidences))
	for i, c := range confidences {
		hits = append(hits, rag.ScoredHit{
			Document: rag.Document{
				Content: "evidence",
				Metadata: rag.DocumentMetadata{
					DocID:   "doc",
					ChunkID: string(rune('a' + i)),
				},
			},
			RawScore: c,
		})
	}
	return &stubStore{hits: hits}
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func newTestPipeline(provider llm.Provider, store rag.VectorStore, cfg *config.Config) (*Pipeline, error) {
	return NewPipeline(cfg, Dependencies{
		Provider: provider,
		Store:    store,
		Counter:  rag.EstimateCounter{},
	}, nil, nil)
}
