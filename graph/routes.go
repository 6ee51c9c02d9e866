package graph

import (
	"github.com/RaghavOG/advance-rag/rag"
	"github.com/RaghavOG/advance-rag/types"
)

// routeAmbiguity sends an ambiguous question to clarification exactly once
// per sub-query; everything else proceeds to rewriting.
func (n *Nodes) routeAmbiguity(s *State) string {
	if s.IsAmbiguous && !s.ClarificationUsed {
		return nodeClarification
	}
	return nodeRewrite
}

// routeRetrieval is the confidence gate: no documents, or a best confidence
// below the configured threshold, takes the retrieval-failure path.
func (n *Nodes) routeRetrieval(s *State) string {
	if len(s.FinalRetrievedDocs) == 0 {
		return nodeRetrievalFailure
	}
	threshold := n.cfg.Retrieval.ConfidenceThreshold
	best := rag.MaxConfidence(s.FinalRetrievedDocs)
	if threshold > 0 && best < threshold {
		return nodeRetrievalFailure
	}
	return nodeCompress
}

// routeCompression sends compression errors to the extractive fallback.
func (n *Nodes) routeCompression(s *State) string {
	if s.Status.Is(types.StatusCompressionError) {
		return nodeCompressionFallback
	}
	return nodeGenerate
}

// routeGeneration implements the bounded retry: self-loop while budget
// remains, timeout-failure once it is spent, collect on success.
func (n *Nodes) routeGeneration(s *State) string {
	switch {
	case s.Status.Is(types.StatusGenerationRetry):
		if s.GenerationRetries <= n.cfg.Generation.MaxRetries {
			return nodeGenerate
		}
		return nodeTimeoutFailure
	case s.Status.Is(types.StatusGenerationFailed):
		return nodeTimeoutFailure
	default:
		return nodeCollect
	}
}

// routeCollect loops back for the next sub-query until every sub-query has
// a sub-answer, then proceeds to the final merge.
func (n *Nodes) routeCollect(s *State) string {
	if len(s.SubAnswers) < len(s.SubQueries) {
		return nodeAdvance
	}
	return nodeFinalMerge
}

// routeClarification ends the run; the caller must resume explicitly.
func (n *Nodes) routeClarification(s *State) string {
	return End
}
