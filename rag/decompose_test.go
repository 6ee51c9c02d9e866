package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNormalizePrompt(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "  \t\n  ",
			expected: "",
		},
		{
			name:     "collapses runs",
			input:    "What   is\t\ta vector\n\nindex?",
			expected: "What is a vector index?",
		},
		{
			name:     "trims edges",
			input:    "  hello world  ",
			expected: "hello world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePrompt(tt.input))
		})
	}
}

func TestSplitQueries(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty prompt",
			input:    "",
			expected: nil,
		},
		{
			name:     "single question",
			input:    "What is a vector index?",
			expected: []string{"What is a vector index"},
		},
		{
			name:     "question mark plus conjunction",
			input:    "What is X? And also how does Y work?",
			expected: []string{"What is X", "how does Y work"},
		},
		{
			name:     "additionally conjunction",
			input:    "Explain caching? Additionally, explain eviction?",
			expected: []string{"Explain caching", "explain eviction"},
		},
		{
			name:  "numbered lines on separate rows",
			input: "1. What is A?\n2. What is B?",
			expected: []string{
				"What is A?",
				"What is B?",
				"1. What is A",
				"2. What is B",
			},
		},
		{
			name:     "statement without question mark",
			input:    "Summarize the document",
			expected: []string{"Summarize the document"},
		},
		{
			name:     "duplicate questions collapse",
			input:    "What is A? What is A?",
			expected: []string{"What is A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitQueries(tt.input))
		})
	}
}

func TestSplitQueriesNoDuplicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		prompt := rapid.StringMatching(`[A-Za-z ?.\n]{0,200}`).Draw(t, "prompt")
		result := SplitQueries(prompt)

		seen := make(map[string]struct{}, len(result))
		for _, q := range result {
			_, dup := seen[q]
			assert.False(t, dup, "duplicate entry %q", q)
			seen[q] = struct{}{}

			assert.NotEmpty(t, q)
			assert.Equal(t, strings.Trim(q, " ,;"), q)
		}
	})
}
