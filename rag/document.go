package rag

// DocumentMetadata identifies where a chunk came from and how it was
// retrieved.
type DocumentMetadata struct {
	// DocID is the ingestion-assigned document identifier.
	DocID string `json:"doc_id,omitempty"`
	// Source is the origin file or URL, used as the identity fallback when
	// DocID is empty.
	Source string `json:"source,omitempty"`
	// Page within the source document.
	Page int `json:"page,omitempty"`
	// ChunkID within the document.
	ChunkID string `json:"chunk_id,omitempty"`
	// RewriteID is the index of the rewritten query that retrieved this
	// chunk. The retriever assigns it on every search pass, overwriting
	// whatever the store returned.
	RewriteID int `json:"rewrite_id,omitempty"`
	// Probe marks chunks retrieved through the hypothetical-probe vector.
	Probe bool `json:"probe,omitempty"`
}

// Document is a retrieved text chunk.
type Document struct {
	Content  string           `json:"content"`
	Metadata DocumentMetadata `json:"metadata"`
	// Embedding is populated for documents stored in the in-memory store.
	Embedding []float64 `json:"embedding,omitempty"`
}

// ScoredDocument pairs a document with its normalized confidence.
// Confidence is always in [0,1] and higher is better, whatever the
// backend's native score semantics.
type ScoredDocument struct {
	Document   Document `json:"document"`
	Confidence float64  `json:"confidence"`
}

// IdentityKey returns the dedupe key: DocID when present, Source otherwise,
// paired with the chunk ID.
func (d Document) IdentityKey() (string, string) {
	id := d.Metadata.DocID
	if id == "" {
		id = d.Metadata.Source
	}
	return id, d.Metadata.ChunkID
}
