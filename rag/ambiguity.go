package rag

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/llm"
)

const ambiguitySystemPrompt = `You decide whether a user's question is ambiguous.
Ambiguous means: missing subject, vague references (this/that), or scope is unclear.
Reply ONLY with valid JSON, no extra text:
{"is_ambiguous": true|false, "clarification_question": "<string or null>"}`

// AmbiguityResult is the structured classification of a question.
type AmbiguityResult struct {
	IsAmbiguous           bool   `json:"is_ambiguous"`
	ClarificationQuestion string `json:"clarification_question"`
}

// AmbiguityConfig configures the ambiguity checker.
type AmbiguityConfig struct {
	Enabled bool          `json:"enabled"`
	Model   string        `json:"model"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultAmbiguityConfig returns default settings.
func DefaultAmbiguityConfig() AmbiguityConfig {
	return AmbiguityConfig{
		Enabled: true,
		Model:   "gpt-4.1-mini",
		Timeout: 15 * time.Second,
	}
}

// AmbiguityChecker classifies a question as ambiguous via the chat provider.
type AmbiguityChecker struct {
	provider llm.Provider
	cfg      AmbiguityConfig
	logger   *zap.Logger
}

// NewAmbiguityChecker creates an ambiguity checker.
func NewAmbiguityChecker(provider llm.Provider, cfg AmbiguityConfig, logger *zap.Logger) *AmbiguityChecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AmbiguityChecker{provider: provider, cfg: cfg, logger: logger}
}

// Check classifies the query. Disabled configuration or any provider/parse
// failure defaults to "not ambiguous" so classification never blocks a run.
func (c *AmbiguityChecker) Check(ctx context.Context, query string) AmbiguityResult {
	if !c.cfg.Enabled || c.provider == nil {
		return AmbiguityResult{}
	}

	text, err := llm.Complete(ctx, c.provider, llm.CompletionSpec{
		Model:       c.cfg.Model,
		System:      ambiguitySystemPrompt,
		User:        query,
		Temperature: 0,
		MaxTokens:   120,
		Timeout:     c.cfg.Timeout,
	})
	if err != nil {
		c.logger.Warn("ambiguity classification failed, defaulting to not ambiguous",
			zap.Error(err))
		return AmbiguityResult{}
	}

	// null clarification_question must survive decoding, so parse into an
	// intermediate with a pointer field.
	var parsed struct {
		IsAmbiguous           bool    `json:"is_ambiguous"`
		ClarificationQuestion *string `json:"clarification_question"`
	}
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &parsed); err != nil {
		c.logger.Warn("ambiguity response was not valid JSON, defaulting to not ambiguous",
			zap.String("response", text),
			zap.Error(err))
		return AmbiguityResult{}
	}

	result := AmbiguityResult{IsAmbiguous: parsed.IsAmbiguous}
	if parsed.ClarificationQuestion != nil {
		result.ClarificationQuestion = strings.TrimSpace(*parsed.ClarificationQuestion)
	}
	return result
}

// StripCodeFence removes a Markdown code fence around an LLM response so the
// payload can be parsed as JSON.
func StripCodeFence(s string) string {
	if !strings.Contains(s, "```") {
		return strings.TrimSpace(s)
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return strings.TrimSpace(s)
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
