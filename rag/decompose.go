package rag

import (
	"regexp"
	"strings"
)

// Rule-based query decomposition. No LLM involved: question marks, numbered
// list lines and lightweight conjunctions are enough for the prompts this
// pipeline serves.

var (
	whitespaceRe   = regexp.MustCompile(`\s+`)
	numberedLineRe = regexp.MustCompile(`^\s*\d+[\.\)\-]\s*(.+)$`)
	questionMarkRe = regexp.MustCompile(`\?+`)
	conjunctionRe  = regexp.MustCompile(`(?i)\b(?:and also|also|additionally)\b`)
)

// NormalizePrompt collapses whitespace runs to single spaces and trims the
// result.
func NormalizePrompt(raw string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
}

// SplitQueries splits a prompt into independent sub-questions.
//
// Numbered-list lines are captured first, then the prompt is split on
// question marks and on "and also" / "also" / "additionally" within each
// segment. Candidates are trimmed and deduplicated preserving first-seen
// order. An empty or question-free prompt yields no fragments; callers fall
// back to the whole prompt.
func SplitQueries(prompt string) []string {
	if strings.TrimSpace(prompt) == "" {
		return nil
	}

	var numbered []string
	for _, line := range strings.Split(prompt, "\n") {
		if m := numberedLineRe.FindStringSubmatch(line); m != nil {
			if q := strings.TrimSpace(m[1]); q != "" {
				numbered = append(numbered, q)
			}
		}
	}

	normalized := NormalizePrompt(prompt)

	var subQueries []string
	for _, part := range questionMarkRe.Split(normalized, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, chunk := range conjunctionRe.Split(part, -1) {
			chunk = strings.Trim(chunk, " ,;")
			if chunk != "" {
				subQueries = append(subQueries, chunk)
			}
		}
	}

	seen := make(map[string]struct{})
	var result []string
	for _, q := range append(numbered, subQueries...) {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		result = append(result, q)
	}

	return result
}
