package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RaghavOG/advance-rag/llm"
	"github.com/RaghavOG/advance-rag/types"
)

const (
	contextBeginMarker = "<<BEGIN COMPRESSED CONTEXT>>"
	contextEndMarker   = "<<END COMPRESSED CONTEXT>>"

	fallbackSnippetLen = 400
	fallbackMaxDocs    = 3
)

const compressionSystemPrompt = "You are a context compressor for a Retrieval-Augmented Generation system.\n" +
	"Your ONLY job is to extract and rewrite the parts of the retrieved text\n" +
	"that are relevant to the user's question.\n" +
	"- Do NOT answer the question.\n" +
	"- Do NOT explain your reasoning.\n" +
	"- Keep citations or doc/page references if helpful.\n"

// CompressorConfig holds the per-call model settings for compression.
type CompressorConfig struct {
	Model            string
	MaxTokens        int
	MaxContextTokens int
	Timeout          time.Duration
}

// DefaultCompressorConfig mirrors the shipped configuration defaults.
func DefaultCompressorConfig() CompressorConfig {
	return CompressorConfig{
		MaxTokens:        500,
		MaxContextTokens: 4000,
		Timeout:          30 * time.Second,
	}
}

// Compressor reduces retrieved evidence to a focused context via an LLM,
// wrapping the result in explicit markers so downstream prompts can treat
// the block as data rather than instructions.
type Compressor struct {
	provider llm.Provider
	counter  TokenCounter
	cfg      CompressorConfig
	logger   *zap.Logger
}

// NewCompressor creates a compressor. counter may be nil, in which case a
// length-based estimate is used for the context budget.
func NewCompressor(provider llm.Provider, counter TokenCounter, cfg CompressorConfig, logger *zap.Logger) *Compressor {
	if counter == nil {
		counter = EstimateCounter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compressor{provider: provider, counter: counter, cfg: cfg, logger: logger}
}

// Compress builds numbered, source-attributed snippets from docs, trims them
// to the token budget, and asks the model for a relevance-filtered summary.
// The returned context is marker-wrapped. An error means the caller should
// use ExtractiveFallback instead.
func (c *Compressor) Compress(ctx context.Context, docs []ScoredDocument, query string) (string, error) {
	if len(docs) == 0 {
		return WrapContext(""), nil
	}
	if c.provider == nil {
		return "", fmt.Errorf("compressor: no provider configured")
	}

	joined := c.buildSnippets(docs)

	userPrompt := fmt.Sprintf("Question:\n%s\n\nRetrieved context:\n%s", query, joined)
	text, err := llm.Complete(ctx, c.provider, llm.CompletionSpec{
		Model:       c.cfg.Model,
		System:      compressionSystemPrompt,
		User:        userPrompt,
		Temperature: 0,
		MaxTokens:   c.cfg.MaxTokens,
		Timeout:     c.cfg.Timeout,
	})
	if err != nil {
		return "", types.NewError(types.ErrCompressionFailed, "context compression failed").WithCause(err)
	}

	c.logger.Debug("context compressed",
		zap.Int("docs", len(docs)),
		zap.Int("compressed_len", len(text)))
	return WrapContext(text), nil
}

// buildSnippets renders each document as "[n] (doc_id=…, page=…) content",
// stopping once the token budget is spent.
func (c *Compressor) buildSnippets(docs []ScoredDocument) string {
	var b strings.Builder
	used := 0
	for i, sd := range docs {
		d := sd.Document
		var loc []string
		if d.Metadata.DocID != "" {
			loc = append(loc, "doc_id="+d.Metadata.DocID)
		}
		if d.Metadata.Page > 0 {
			loc = append(loc, fmt.Sprintf("page=%d", d.Metadata.Page))
		}
		prefix := fmt.Sprintf("[%d]", i+1)
		if len(loc) > 0 {
			prefix = fmt.Sprintf("[%d] (%s)", i+1, strings.Join(loc, ", "))
		}
		snippet := prefix + " " + d.Content

		cost := c.counter.Count(snippet)
		if c.cfg.MaxContextTokens > 0 && used+cost > c.cfg.MaxContextTokens && b.Len() > 0 {
			c.logger.Debug("context budget reached",
				zap.Int("included_docs", i),
				zap.Int("budget", c.cfg.MaxContextTokens))
			break
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(snippet)
		used += cost
	}
	return b.String()
}

// ExtractiveFallback builds a context without the LLM: the first
// fallbackSnippetLen characters of up to fallbackMaxDocs documents,
// marker-wrapped. Empty input yields "(no context)".
func ExtractiveFallback(docs []ScoredDocument) string {
	limit := len(docs)
	if limit > fallbackMaxDocs {
		limit = fallbackMaxDocs
	}
	parts := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		text := docs[i].Document.Content
		if len(text) > fallbackSnippetLen {
			text = text[:fallbackSnippetLen]
		}
		parts = append(parts, fmt.Sprintf("[%d] %s", i+1, text))
	}
	extractive := "(no context)"
	if len(parts) > 0 {
		extractive = strings.Join(parts, "\n\n")
	}
	return WrapContext(extractive)
}

// WrapContext surrounds text with the begin/end context markers.
func WrapContext(text string) string {
	return contextBeginMarker + "\n" + text + "\n" + contextEndMarker
}
