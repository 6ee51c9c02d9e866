package types

// StatusCode identifies a non-fatal pipeline condition carried through the
// run state and interpreted by routing logic.
type StatusCode string

const (
	// StatusNone means the run is healthy.
	StatusNone StatusCode = ""
	// StatusClarificationNeeded pauses the run until the caller supplies a
	// clarification answer. Detail holds the question for the user.
	StatusClarificationNeeded StatusCode = "clarification_needed"
	// StatusRetrievalFailure marks a sub-query that produced no usable
	// evidence. The sub-query still completes with a canned answer.
	StatusRetrievalFailure StatusCode = "retrieval_failure"
	// StatusCompressionError signals a failed compression call. Routing sends
	// the run to the extractive fallback, which replaces this status.
	StatusCompressionError StatusCode = "compression_error"
	// StatusCompressionFallback marks a sub-query whose context was built by
	// the extractive fallback instead of the LLM compressor.
	StatusCompressionFallback StatusCode = "compression_fallback_used"
	// StatusGenerationRetry signals a failed generation attempt with retry
	// budget remaining. Detail holds the attempt error.
	StatusGenerationRetry StatusCode = "generation_retry"
	// StatusGenerationFailed signals a failed generation attempt with the
	// retry budget exhausted. Detail holds the last error.
	StatusGenerationFailed StatusCode = "generation_failed"
	// StatusTimeoutFailure marks a sub-query answered with the canned
	// apology after all generation retries were spent.
	StatusTimeoutFailure StatusCode = "llm_timeout_failure"
	// StatusDecompositionTruncated warns that the prompt contained more
	// sub-questions than allowed and was truncated. Non-fatal.
	StatusDecompositionTruncated StatusCode = "decomposition_truncated"
)

// Status is a tagged run condition. Code drives routing; Detail carries the
// human-readable payload (clarification question, warning text, last error).
type Status struct {
	Code   StatusCode `json:"code"`
	Detail string     `json:"detail,omitempty"`
}

// NewStatus creates a Status with the given code and detail.
func NewStatus(code StatusCode, detail string) Status {
	return Status{Code: code, Detail: detail}
}

// OK reports whether the status carries no condition.
func (s Status) OK() bool { return s.Code == StatusNone }

// Is reports whether the status carries the given code.
func (s Status) Is(code StatusCode) bool { return s.Code == code }

// String renders the status for logs.
func (s Status) String() string {
	if s.Code == StatusNone {
		return "ok"
	}
	if s.Detail == "" {
		return string(s.Code)
	}
	return string(s.Code) + ": " + s.Detail
}
