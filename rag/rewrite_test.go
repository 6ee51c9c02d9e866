package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewriter(t *testing.T) {
	const query = "What is a vector index?"

	tests := []struct {
		name     string
		response string
		expected []string
	}{
		{
			name:     "rewrites prepend the original",
			response: `["vector index definition", "how vector indexes work"]`,
			expected: []string{query, "vector index definition", "how vector indexes work"},
		},
		{
			name:     "original already present is not duplicated",
			response: `["What is a vector index?", "vector index definition"]`,
			expected: []string{query, "vector index definition"},
		},
		{
			name:     "fenced response is parsed",
			response: "```json\n[\"vector index basics\"]\n```",
			expected: []string{query, "vector index basics"},
		},
		{
			name:     "result capped at max rewrites",
			response: `["a", "b", "c", "d", "e"]`,
			expected: []string{query, "a", "b", "c"},
		},
		{
			name:     "malformed response degrades to original",
			response: "Sure! Here are some rewrites: ...",
			expected: []string{query},
		},
		{
			name:     "empty strings are dropped",
			response: `["", "  ", "vector index definition"]`,
			expected: []string{query, "vector index definition"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := NewRewriter(staticProvider(tt.response), DefaultRewriterConfig(), nil)
			assert.Equal(t, tt.expected, rw.Rewrite(context.Background(), query))
		})
	}
}

func TestRewriterDisabled(t *testing.T) {
	cfg := DefaultRewriterConfig()
	cfg.Enabled = false

	provider := staticProvider(`["something else"]`)
	rw := NewRewriter(provider, cfg, nil)

	assert.Equal(t, []string{"q"}, rw.Rewrite(context.Background(), "q"))
	assert.Zero(t, provider.calls)
}

func TestRewriterProviderError(t *testing.T) {
	rw := NewRewriter(errorProvider(errors.New("boom")), DefaultRewriterConfig(), nil)
	assert.Equal(t, []string{"q"}, rw.Rewrite(context.Background(), "q"))
}

func TestHypotheticalDocument(t *testing.T) {
	t.Run("returns trimmed text", func(t *testing.T) {
		rw := NewRewriter(staticProvider("  A vector index stores embeddings.  "), DefaultRewriterConfig(), nil)
		assert.Equal(t, "A vector index stores embeddings.",
			rw.HypotheticalDocument(context.Background(), "What is a vector index?"))
	})

	t.Run("error yields empty probe", func(t *testing.T) {
		rw := NewRewriter(errorProvider(errors.New("boom")), DefaultRewriterConfig(), nil)
		assert.Empty(t, rw.HypotheticalDocument(context.Background(), "q"))
	})

	t.Run("disabled yields empty probe", func(t *testing.T) {
		cfg := DefaultRewriterConfig()
		cfg.Enabled = false
		rw := NewRewriter(staticProvider("text"), cfg, nil)
		assert.Empty(t, rw.HypotheticalDocument(context.Background(), "q"))
	})
}
