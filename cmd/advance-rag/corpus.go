package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	advancerag "github.com/RaghavOG/advance-rag"
	"github.com/RaghavOG/advance-rag/rag"
)

// corpusLine is one JSONL record of the document corpus.
type corpusLine struct {
	Content string `json:"content"`
	DocID   string `json:"doc_id,omitempty"`
	Source  string `json:"source,omitempty"`
	Page    int    `json:"page,omitempty"`
	ChunkID string `json:"chunk_id,omitempty"`
}

// loadCorpus reads a JSONL file and adds every record to the engine's
// vector store. Blank lines are skipped; a malformed line fails the load.
func loadCorpus(ctx context.Context, eng *advancerag.Engine, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var docs []rag.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec corpusLine
		if err := json.Unmarshal(line, &rec); err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if rec.Content == "" {
			continue
		}
		docs = append(docs, rag.Document{
			Content: rec.Content,
			Metadata: rag.DocumentMetadata{
				DocID:   rec.DocID,
				Source:  rec.Source,
				Page:    rec.Page,
				ChunkID: rec.ChunkID,
			},
		})
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	store, ok := eng.Store().(*rag.InMemoryVectorStore)
	if !ok {
		return 0, fmt.Errorf("corpus loading requires the in-memory vector store")
	}
	if err := store.AddDocuments(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
