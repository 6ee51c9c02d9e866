// Package types provides shared type definitions for the advance-rag
// pipeline: the tagged run Status interpreted by graph routing, and the
// structured Error used by collaborator clients. It is the lowest-level
// package and depends on nothing else in the module.
package types
