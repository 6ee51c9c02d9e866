package rag

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/llm"
)

const rewriteSystemPrompt = `You rewrite a user's question into up to 4 alternative search queries.
- Do NOT change the intent.
- Do NOT introduce new entities.
- Focus on different phrasings and keyword combinations.
Return ONLY a JSON array of strings, no extra text.`

const probeSystemPrompt = `You write a neutral, reference-style paragraph that might appear in a ` +
	`technical document answering the user's question. Do NOT mention that ` +
	`you are hypothetical; just write the content itself.`

// RewriterConfig configures query rewriting and probe generation.
type RewriterConfig struct {
	Enabled     bool          `json:"enabled"`
	Model       string        `json:"model"`
	MaxRewrites int           `json:"max_rewrites"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultRewriterConfig returns default settings.
func DefaultRewriterConfig() RewriterConfig {
	return RewriterConfig{
		Enabled:     true,
		Model:       "gpt-4.1-mini",
		MaxRewrites: 4,
		MaxTokens:   300,
		Temperature: 0.3,
		Timeout:     20 * time.Second,
	}
}

// Rewriter generates alternate phrasings of a question and hypothetical
// probe documents for vector retrieval.
type Rewriter struct {
	provider llm.Provider
	cfg      RewriterConfig
	logger   *zap.Logger
}

// NewRewriter creates a rewriter.
func NewRewriter(provider llm.Provider, cfg RewriterConfig, logger *zap.Logger) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRewrites <= 0 {
		cfg.MaxRewrites = 4
	}
	return &Rewriter{provider: provider, cfg: cfg, logger: logger}
}

// Rewrite returns alternate phrasings of the query. The original query is
// always first and the result is capped at the configured maximum. When
// rewriting is disabled or the provider response cannot be parsed, the
// original query is the sole entry.
func (r *Rewriter) Rewrite(ctx context.Context, query string) []string {
	if !r.cfg.Enabled || r.provider == nil {
		return []string{query}
	}

	text, err := llm.Complete(ctx, r.provider, llm.CompletionSpec{
		Model:       r.cfg.Model,
		System:      rewriteSystemPrompt,
		User:        "Original question:\n" + query,
		Temperature: float32(r.cfg.Temperature),
		MaxTokens:   min(r.cfg.MaxTokens, 256),
		Timeout:     r.cfg.Timeout,
	})

	var rewrites []string
	if err != nil {
		r.logger.Warn("query rewriting failed, falling back to original query",
			zap.Error(err))
	} else {
		rewrites = parseRewriteList(text)
		if rewrites == nil {
			r.logger.Warn("rewrite response was not a JSON string array, falling back to original query",
				zap.String("response", text))
		}
	}

	if !containsString(rewrites, query) {
		rewrites = append([]string{query}, rewrites...)
	}
	if len(rewrites) > r.cfg.MaxRewrites {
		rewrites = rewrites[:r.cfg.MaxRewrites]
	}

	r.logger.Debug("query rewrites generated",
		zap.Int("count", len(rewrites)),
		zap.Strings("rewrites", rewrites))
	return rewrites
}

// HypotheticalDocument generates a probe paragraph whose embedding is used
// as an extra retrieval vector. The text itself is never shown to the user.
// Returns "" when rewriting is disabled or generation fails.
func (r *Rewriter) HypotheticalDocument(ctx context.Context, query string) string {
	if !r.cfg.Enabled || r.provider == nil {
		return ""
	}

	text, err := llm.Complete(ctx, r.provider, llm.CompletionSpec{
		Model:       r.cfg.Model,
		System:      probeSystemPrompt,
		User:        "Question:\n" + query,
		Temperature: float32(r.cfg.Temperature),
		MaxTokens:   r.cfg.MaxTokens,
		Timeout:     r.cfg.Timeout,
	})
	if err != nil {
		r.logger.Warn("probe document generation failed, skipping probe retrieval",
			zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

// parseRewriteList parses a JSON array of strings, tolerating code fences.
// Returns nil when the payload is not a string array.
func parseRewriteList(text string) []string {
	var raw []string
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}
