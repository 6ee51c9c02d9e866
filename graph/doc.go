// Package graph implements the query-answering orchestration: a directed
// graph of named steps driven by a synchronous engine. Steps return typed
// partial updates merged field-by-field into the run state; conditional
// edges route on the state's tagged status. Loops (generation retry, the
// multi-question advance) are bounded by state counters, with a transition
// budget in the engine as a backstop.
package graph
