package rag

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/llm/embedding"
)

// fakeChatProvider scripts completions for tests. reply receives the full
// request so tests can branch on the system prompt.
type fakeChatProvider struct {
	reply func(req *llm.ChatRequest) (string, error)
	calls int
}

func (f *fakeChatProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	f.calls++
	text, err := f.reply(req)
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

func (f *fakeChatProvider) HealthCheck(ctx context.Context) (*llm.HealthStatus, error) {
	return &llm.HealthStatus{Healthy: true}, nil
}

func (f *fakeChatProvider) Name() string { return "fake" }

func staticProvider(text string) *fakeChatProvider {
	return &fakeChatProvider{reply: func(*llm.ChatRequest) (string, error) {
		return text, nil
	}}
}

func errorProvider(err error) *fakeChatProvider {
	return &fakeChatProvider{reply: func(*llm.ChatRequest) (string, error) {
		return "", err
	}}
}

// fakeEmbedder produces deterministic unit-ish vectors from an FNV hash so
// that equal texts embed identically.
type fakeEmbedder struct{}

func (fakeEmbedder) embed(text string) []float64 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()
	vec := make([]float64, 8)
	for i := range vec {
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float64(seed%1000)/500.0 - 1.0
	}
	return vec
}

func (e fakeEmbedder) Embed(ctx context.Context, req *embedding.EmbeddingRequest) (*embedding.EmbeddingResponse, error) {
	resp := &embedding.EmbeddingResponse{Provider: "fake", Model: req.Model}
	for i, in := range req.Input {
		resp.Embeddings = append(resp.Embeddings, embedding.EmbeddingData{
			Index:     i,
			Embedding: e.embed(in),
		})
	}
	return resp, nil
}

func (e fakeEmbedder) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	return e.embed(query), nil
}

func (e fakeEmbedder) EmbedDocuments(ctx context.Context, documents []string) ([][]float64, error) {
	out := make([][]float64, len(documents))
	for i, d := range documents {
		out[i] = e.embed(d)
	}
	return out, nil
}

func (fakeEmbedder) Name() string { return "fake-embedder" }

func (fakeEmbedder) Dimensions() int { return 8 }
