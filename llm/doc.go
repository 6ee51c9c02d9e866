// Package llm defines the provider-agnostic chat completion contract used by
// the pipeline: request/response types, the Provider interface, a Complete
// convenience helper for single system+user calls, and an optional
// multi-level (LRU + Redis) response cache.
//
// Concrete providers live under providers/; the embedding counterpart lives
// in llm/embedding.
package llm
