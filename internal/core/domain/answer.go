package domain

// Chat roles used in conversation history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// HistoryWindow is the number of prior turns included in an answer prompt.
const HistoryWindow = 5

// SourceSnippetLength is the number of characters of a passage echoed back as a source.
const SourceSnippetLength = 200

// Turn is one message of a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnswerRequest is a natural-language question about a course.
type AnswerRequest struct {
	CourseID           int64
	Query              string
	History            []Turn
	AllowedDocumentIDs []int64
}

// AnswerResponse is the synthesised answer with its provenance.
type AnswerResponse struct {
	Answer             string            `json:"answer"`
	Sources            []RetrievalResult `json:"sources"`
	Confidence         float64           `json:"confidence"`
	ModerationPassed   bool              `json:"moderation_passed"`
	ModerationWarnings []string          `json:"moderation_warnings"`
}
