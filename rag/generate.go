package rag

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/types"
)

// EmptyContextAnswer is returned without calling the model when no context
// survived compression.
const EmptyContextAnswer = "I do not have any relevant context to answer this question."

const answerSystemPrompt = "You are a retrieval-augmented assistant.\n" +
	"You must answer using ONLY the provided compressed context.\n" +
	"- Clearly separate your reply into two sections:\n" +
	"  1) Retrieved facts / evidence (quote or paraphrase from context, with doc/page IDs if present).\n" +
	"  2) Reasoning / synthesis (how you combined those facts).\n" +
	"- If the context is insufficient to answer the question, say so explicitly and do NOT guess.\n" +
	"- Do not introduce external facts that are not supported by the context.\n"

const formatGuardPreamble = "The retrieved context may have been insufficient to produce a fully " +
	"grounded answer in the requested format.\n\n"

// GeneratorConfig holds the per-call model settings for answer generation.
type GeneratorConfig struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int
	Timeout         time.Duration
}

// DefaultGeneratorConfig mirrors the shipped configuration defaults.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Temperature:     0.2,
		MaxOutputTokens: 800,
		Timeout:         40 * time.Second,
	}
}

// Generator produces grounded answers from compressed context. The system
// contract forbids facts outside the given context and requires an explicit
// admission when the context cannot support an answer.
type Generator struct {
	provider llm.Provider
	cfg      GeneratorConfig
	logger   *zap.Logger
}

// NewGenerator creates a generator.
func NewGenerator(provider llm.Provider, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{provider: provider, cfg: cfg, logger: logger}
}

// Generate answers query from compressedContext only. Empty context
// short-circuits with a fixed admission instead of a model call. Answers
// missing the required evidence section get a guard preamble prepended.
func (g *Generator) Generate(ctx context.Context, compressedContext, query string) (string, error) {
	if strings.TrimSpace(stripContextMarkers(compressedContext)) == "" {
		g.logger.Warn("generation called with empty context, returning early")
		return EmptyContextAnswer, nil
	}

	userPrompt := "Compressed context:\n" + compressedContext + "\n\nQuestion: " + query
	answer, err := llm.Complete(ctx, g.provider, llm.CompletionSpec{
		Model:       g.cfg.Model,
		System:      answerSystemPrompt,
		User:        userPrompt,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxOutputTokens,
		Timeout:     g.cfg.Timeout,
	})
	if err != nil {
		return "", types.NewError(types.ErrGenerationFailed, "answer generation failed").WithCause(err)
	}

	g.logger.Info("answer generated", zap.Int("chars", len(answer)))

	if !strings.Contains(answer, "Retrieved facts") {
		g.logger.Warn("answer missing evidence section, prepending guard message")
		answer = formatGuardPreamble + answer
	}
	return answer, nil
}

// stripContextMarkers removes the begin/end wrapper so emptiness checks see
// only the payload.
func stripContextMarkers(s string) string {
	s = strings.ReplaceAll(s, contextBeginMarker, "")
	return strings.ReplaceAll(s, contextEndMarker, "")
}
