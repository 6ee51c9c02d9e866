package rag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func scoredDoc(docID, chunkID string, confidence float64) ScoredDocument {
	return ScoredDocument{
		Document: Document{
			Content:  "content of " + docID + "/" + chunkID,
			Metadata: DocumentMetadata{DocID: docID, ChunkID: chunkID},
		},
		Confidence: confidence,
	}
}

func TestMergeScoredDocuments(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, MergeScoredDocuments(nil, 5))
	})

	t.Run("sorts by confidence descending", func(t *testing.T) {
		merged := MergeScoredDocuments([]ScoredDocument{
			scoredDoc("a", "1", 0.2),
			scoredDoc("b", "1", 0.9),
			scoredDoc("c", "1", 0.5),
		}, 5)

		require.Len(t, merged, 3)
		assert.Equal(t, "b", merged[0].Document.Metadata.DocID)
		assert.Equal(t, "c", merged[1].Document.Metadata.DocID)
		assert.Equal(t, "a", merged[2].Document.Metadata.DocID)
	})

	t.Run("duplicate identity keeps higher confidence", func(t *testing.T) {
		merged := MergeScoredDocuments([]ScoredDocument{
			scoredDoc("a", "1", 0.3),
			scoredDoc("a", "1", 0.8),
		}, 5)

		require.Len(t, merged, 1)
		assert.Equal(t, 0.8, merged[0].Confidence)
	})

	t.Run("source used when doc id missing", func(t *testing.T) {
		d1 := ScoredDocument{
			Document:   Document{Metadata: DocumentMetadata{Source: "report.pdf", ChunkID: "7"}},
			Confidence: 0.4,
		}
		d2 := ScoredDocument{
			Document:   Document{Metadata: DocumentMetadata{Source: "report.pdf", ChunkID: "7"}},
			Confidence: 0.6,
		}
		merged := MergeScoredDocuments([]ScoredDocument{d1, d2}, 5)
		require.Len(t, merged, 1)
		assert.Equal(t, 0.6, merged[0].Confidence)
	})

	t.Run("truncates to top k", func(t *testing.T) {
		var docs []ScoredDocument
		for i := 0; i < 10; i++ {
			docs = append(docs, scoredDoc(fmt.Sprintf("d%d", i), "1", float64(i)/10))
		}
		merged := MergeScoredDocuments(docs, 3)
		require.Len(t, merged, 3)
		assert.Equal(t, "d9", merged[0].Document.Metadata.DocID)
	})

	t.Run("zero top k disables truncation", func(t *testing.T) {
		merged := MergeScoredDocuments([]ScoredDocument{
			scoredDoc("a", "1", 0.1),
			scoredDoc("b", "1", 0.2),
		}, 0)
		assert.Len(t, merged, 2)
	})
}

func TestMergeScoredDocumentsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(t, "n")
		topK := rapid.IntRange(1, 10).Draw(t, "topK")

		docs := make([]ScoredDocument, 0, n)
		for i := 0; i < n; i++ {
			docs = append(docs, scoredDoc(
				rapid.SampledFrom([]string{"a", "b", "c", "d"}).Draw(t, "docID"),
				rapid.SampledFrom([]string{"1", "2", "3"}).Draw(t, "chunkID"),
				rapid.Float64Range(0, 1).Draw(t, "confidence"),
			))
		}

		merged := MergeScoredDocuments(docs, topK)

		assert.LessOrEqual(t, len(merged), topK)

		seen := make(map[[2]string]struct{})
		for i, sd := range merged {
			if i > 0 {
				assert.GreaterOrEqual(t, merged[i-1].Confidence, sd.Confidence)
			}
			docID, chunkID := sd.Document.IdentityKey()
			key := [2]string{docID, chunkID}
			_, dup := seen[key]
			assert.False(t, dup, "duplicate identity %v", key)
			seen[key] = struct{}{}
		}
	})
}

func TestMaxConfidence(t *testing.T) {
	assert.Equal(t, 0.0, MaxConfidence(nil))
	assert.Equal(t, 0.9, MaxConfidence([]ScoredDocument{
		scoredDoc("a", "1", 0.3),
		scoredDoc("b", "1", 0.9),
		scoredDoc("c", "1", 0.5),
	}))
}
