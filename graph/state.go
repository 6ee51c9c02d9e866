package graph

import (
	"github.com/google/uuid"

	"github.com/RaghavOG/advance-rag/rag"
	"github.com/RaghavOG/advance-rag/types"
)

// SubAnswer is one completed question/answer pair. The sub_answers slice is
// the authoritative progress marker for the multi-question loop.
type SubAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// State is the run state threaded through every node. One State exists per
// invocation (or per resumption after a clarification round-trip); it is
// discarded once the terminal node is reached.
type State struct {
	RunID string `json:"run_id"`

	RawPrompt        string `json:"raw_prompt"`
	NormalizedPrompt string `json:"normalized_prompt"`

	SubQueries   []string `json:"sub_queries"`
	CurrentQuery string   `json:"current_query"`

	IsAmbiguous           bool   `json:"is_ambiguous"`
	ClarificationQuestion string `json:"clarification_question,omitempty"`
	ClarificationUsed     bool   `json:"clarification_used"`
	ClarifiedQuery        string `json:"clarified_query,omitempty"`

	RewrittenQueries []string `json:"rewritten_queries"`

	TopKText  int `json:"top_k_text"`
	TopKImage int `json:"top_k_image"`
	TopKAudio int `json:"top_k_audio"`

	RetrievedDocsWithScores []rag.ScoredDocument `json:"retrieved_docs_with_scores,omitempty"`
	FinalRetrievedDocs      []rag.ScoredDocument `json:"final_retrieved_docs,omitempty"`

	CompressedContext string `json:"compressed_context,omitempty"`
	AnswerText        string `json:"answer_text,omitempty"`
	GenerationRetries int    `json:"generation_retries"`

	SubAnswers  []SubAnswer `json:"sub_answers"`
	FinalAnswer string      `json:"final_answer,omitempty"`

	Status types.Status `json:"status"`
}

// NewState creates a fresh run state for a raw prompt.
func NewState(rawPrompt string) *State {
	return &State{
		RunID:     uuid.NewString(),
		RawPrompt: rawPrompt,
	}
}

// Update is the partial state diff a node returns. Only non-nil fields are
// merged; a node owns exactly the fields it sets. This keeps field ownership
// explicit instead of letting every node mutate the whole record.
type Update struct {
	NormalizedPrompt *string

	SubQueries   *[]string
	CurrentQuery *string

	IsAmbiguous           *bool
	ClarificationQuestion *string
	ClarificationUsed     *bool
	ClarifiedQuery        *string

	RewrittenQueries *[]string

	TopKText  *int
	TopKImage *int
	TopKAudio *int

	RetrievedDocsWithScores *[]rag.ScoredDocument
	FinalRetrievedDocs      *[]rag.ScoredDocument

	CompressedContext *string
	AnswerText        *string
	GenerationRetries *int

	SubAnswers  *[]SubAnswer
	FinalAnswer *string

	Status *types.Status
}

// apply merges the update into the state field by field.
func (u Update) apply(s *State) {
	if u.NormalizedPrompt != nil {
		s.NormalizedPrompt = *u.NormalizedPrompt
	}
	if u.SubQueries != nil {
		s.SubQueries = *u.SubQueries
	}
	if u.CurrentQuery != nil {
		s.CurrentQuery = *u.CurrentQuery
	}
	if u.IsAmbiguous != nil {
		s.IsAmbiguous = *u.IsAmbiguous
	}
	if u.ClarificationQuestion != nil {
		s.ClarificationQuestion = *u.ClarificationQuestion
	}
	if u.ClarificationUsed != nil {
		s.ClarificationUsed = *u.ClarificationUsed
	}
	if u.ClarifiedQuery != nil {
		s.ClarifiedQuery = *u.ClarifiedQuery
	}
	if u.RewrittenQueries != nil {
		s.RewrittenQueries = *u.RewrittenQueries
	}
	if u.TopKText != nil {
		s.TopKText = *u.TopKText
	}
	if u.TopKImage != nil {
		s.TopKImage = *u.TopKImage
	}
	if u.TopKAudio != nil {
		s.TopKAudio = *u.TopKAudio
	}
	if u.RetrievedDocsWithScores != nil {
		s.RetrievedDocsWithScores = *u.RetrievedDocsWithScores
	}
	if u.FinalRetrievedDocs != nil {
		s.FinalRetrievedDocs = *u.FinalRetrievedDocs
	}
	if u.CompressedContext != nil {
		s.CompressedContext = *u.CompressedContext
	}
	if u.AnswerText != nil {
		s.AnswerText = *u.AnswerText
	}
	if u.GenerationRetries != nil {
		s.GenerationRetries = *u.GenerationRetries
	}
	if u.SubAnswers != nil {
		s.SubAnswers = *u.SubAnswers
	}
	if u.FinalAnswer != nil {
		s.FinalAnswer = *u.FinalAnswer
	}
	if u.Status != nil {
		s.Status = *u.Status
	}
}

// EffectiveQuery returns the clarified query when present, else the current
// sub-query. Retrieval, compression, and generation all consume this form.
func (s *State) EffectiveQuery() string {
	if s.ClarifiedQuery != "" {
		return s.ClarifiedQuery
	}
	return s.CurrentQuery
}

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func intPtr(v int) *int { return &v }

func strsPtr(v []string) *[]string { return &v }

func docsPtr(v []rag.ScoredDocument) *[]rag.ScoredDocument { return &v }

func statusPtr(v types.Status) *types.Status { return &v }

func subAnswersPtr(v []SubAnswer) *[]SubAnswer { return &v }
