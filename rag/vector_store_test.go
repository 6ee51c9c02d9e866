package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name      string
		raw       float64
		semantics ScoreSemantics
		expected  float64
	}{
		{name: "similarity passes through", raw: 0.7, semantics: SemanticsSimilarity, expected: 0.7},
		{name: "similarity clamps high", raw: 1.4, semantics: SemanticsSimilarity, expected: 1.0},
		{name: "similarity clamps low", raw: -0.2, semantics: SemanticsSimilarity, expected: 0.0},
		{name: "distance inverts", raw: 0.3, semantics: SemanticsDistance, expected: 0.7},
		{name: "distance above one clamps to zero", raw: 1.8, semantics: SemanticsDistance, expected: 0.0},
		{name: "bounded distance zero is perfect", raw: 0.0, semantics: SemanticsBoundedDistance, expected: 1.0},
		{name: "bounded distance one", raw: 1.0, semantics: SemanticsBoundedDistance, expected: 0.5},
		{name: "bounded distance negative treated as zero", raw: -2.0, semantics: SemanticsBoundedDistance, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NormalizeScore(tt.raw, tt.semantics), 1e-9)
		})
	}
}

func TestNormalizeScoreRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.Float64Range(-10, 10).Draw(t, "raw")
		semantics := rapid.SampledFrom([]ScoreSemantics{
			SemanticsSimilarity, SemanticsDistance, SemanticsBoundedDistance,
		}).Draw(t, "semantics")

		conf := NormalizeScore(raw, semantics)
		assert.GreaterOrEqual(t, conf, 0.0)
		assert.LessOrEqual(t, conf, 1.0)
	})
}

func TestInMemoryVectorStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryVectorStore(fakeEmbedder{}, nil)

	docs := []Document{
		{Content: "the quick brown fox", Metadata: DocumentMetadata{DocID: "a", ChunkID: "1"}},
		{Content: "jumped over the lazy dog", Metadata: DocumentMetadata{DocID: "a", ChunkID: "2"}},
		{Content: "entirely unrelated text", Metadata: DocumentMetadata{DocID: "b", ChunkID: "1"}},
	}
	require.NoError(t, store.AddDocuments(ctx, docs))
	assert.Equal(t, 3, store.Count())

	t.Run("exact content ranks first", func(t *testing.T) {
		hits, err := store.SimilaritySearchWithScore(ctx, "the quick brown fox", 2)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		assert.Equal(t, "the quick brown fox", hits[0].Document.Content)
		assert.InDelta(t, 1.0, hits[0].RawScore, 1e-9)
		assert.GreaterOrEqual(t, hits[0].RawScore, hits[1].RawScore)
	})

	t.Run("k larger than corpus", func(t *testing.T) {
		hits, err := store.SimilaritySearchWithScore(ctx, "fox", 10)
		require.NoError(t, err)
		assert.Len(t, hits, 3)
	})

	t.Run("unscored search", func(t *testing.T) {
		found, err := store.SimilaritySearch(ctx, "lazy dog", 1)
		require.NoError(t, err)
		require.Len(t, found, 1)
	})

	t.Run("search by vector", func(t *testing.T) {
		vec, err := fakeEmbedder{}.EmbedQuery(ctx, "entirely unrelated text")
		require.NoError(t, err)
		found, err := store.SimilaritySearchByVector(ctx, vec, 1)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "entirely unrelated text", found[0].Content)
	})

	t.Run("semantics", func(t *testing.T) {
		assert.Equal(t, SemanticsSimilarity, store.ScoreSemantics())
	})
}

func TestInMemoryVectorStoreNoEmbedder(t *testing.T) {
	store := NewInMemoryVectorStore(nil, nil)
	err := store.AddDocuments(context.Background(), []Document{{Content: "x"}})
	assert.Error(t, err)

	_, err = store.SimilaritySearchWithScore(context.Background(), "q", 3)
	assert.Error(t, err)
}
