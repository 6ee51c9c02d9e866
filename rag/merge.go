package rag

import "sort"

// MergeScoredDocuments sorts candidates by confidence descending, removes
// duplicates by document identity keeping the highest-confidence copy, and
// truncates to topK. topK <= 0 disables truncation.
func MergeScoredDocuments(docs []ScoredDocument, topK int) []ScoredDocument {
	if len(docs) == 0 {
		return nil
	}

	sorted := make([]ScoredDocument, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	type identity struct {
		doc   string
		chunk string
	}
	seen := make(map[identity]struct{}, len(sorted))
	merged := make([]ScoredDocument, 0, len(sorted))
	for _, sd := range sorted {
		docID, chunkID := sd.Document.IdentityKey()
		key := identity{doc: docID, chunk: chunkID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, sd)
	}

	if topK > 0 && len(merged) > topK {
		merged = merged[:topK]
	}
	return merged
}

// MaxConfidence returns the highest confidence among merged documents, or 0
// when the slice is empty.
func MaxConfidence(docs []ScoredDocument) float64 {
	best := 0.0
	for _, sd := range docs {
		if sd.Confidence > best {
			best = sd.Confidence
		}
	}
	return best
}
