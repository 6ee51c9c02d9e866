// Package rag contains the retrieval-augmented generation building blocks:
// prompt decomposition, ambiguity detection, query rewriting, vector
// retrieval with score normalization, merge/dedup ranking, context
// compression, and grounded answer generation. All components are pure
// functions or thin LLM/vector-store calls; orchestration lives in the
// graph package.
package rag
