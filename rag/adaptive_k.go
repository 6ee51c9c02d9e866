package rag

import "strings"

// Keywords that mark a query as broad or explanatory. Broad queries keep the
// full configured top-k so enough context is available.
var broadKeywords = []string{
	"explain",
	"overview",
	"why",
	"how",
	"compare",
	"list",
	"failure",
	"modes",
	"best practices",
}

// AdaptiveTopK decides the per-rewrite retrieval breadth for a query.
//
// With a single rewrite, short factual questions get a reduced k of 3 for
// precision and everything else keeps baseK. With multiple rewrites, the
// per-rewrite k is baseK/rewriteCount clamped to [2,4] so the total
// retrieved stays near baseK.
func AdaptiveTopK(query string, rewriteCount, baseK int) int {
	text := strings.ToLower(query)
	words := strings.Fields(text)

	broad := len(words) >= 15
	if !broad {
		for _, kw := range broadKeywords {
			if strings.Contains(text, kw) {
				broad = true
				break
			}
		}
	}

	if rewriteCount <= 1 {
		if !broad && len(words) <= 10 && baseK >= 3 {
			return 3
		}
		return baseK
	}

	per := baseK / rewriteCount
	if per < 2 {
		per = 2
	}
	if per > 4 {
		per = 4
	}
	return per
}
