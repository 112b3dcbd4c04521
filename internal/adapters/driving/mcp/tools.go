package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	CourseID    int64   `json:"course_id" jsonschema:"the course whose material is searched"`
	Query       string  `json:"query" jsonschema:"the text to find relevant passages for"`
	Limit       int     `json:"limit,omitempty" jsonschema:"maximum number of passages to return (default 3)"`
	DocumentIDs []int64 `json:"document_ids,omitempty" jsonschema:"restrict retrieval to these documents"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []PassageOutput `json:"results"`
	Count   int             `json:"count"`
}

// PassageOutput represents a single retrieved passage.
type PassageOutput struct {
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	DocumentTitle string  `json:"document_title"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	CourseID    int64         `json:"course_id" jsonschema:"the course the question is about"`
	Query       string        `json:"query" jsonschema:"the question to answer"`
	History     []domain.Turn `json:"history,omitempty" jsonschema:"earlier turns of the conversation, oldest first"`
	DocumentIDs []int64       `json:"document_ids,omitempty" jsonschema:"restrict answering to these documents"`
}

// ModerateInput is the input schema for the moderate tool.
type ModerateInput struct {
	Text string `json:"text" jsonschema:"the text to classify"`
}

// QuizInput is the input schema for the generate_quiz tool.
type QuizInput struct {
	CourseID     int64   `json:"course_id" jsonschema:"the course the quiz covers"`
	Topic        string  `json:"topic,omitempty" jsonschema:"optional topic to focus on"`
	Difficulty   string  `json:"difficulty,omitempty" jsonschema:"easy, medium or hard (default medium)"`
	NumQuestions int     `json:"num_questions,omitempty" jsonschema:"number of questions to request (default 5)"`
	DocumentIDs  []int64 `json:"document_ids,omitempty" jsonschema:"restrict the quiz to these documents"`
}

// QuizOutput is the output schema for the generate_quiz tool.
type QuizOutput struct {
	Questions []domain.QuizQuestion `json:"questions"`
	Count     int                   `json:"count"`
}

// defaultQuizQuestions is used when the caller does not ask for a count.
const defaultQuizQuestions = 5

// registerTools registers the tool handlers backed by configured ports.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the course passages most relevant to a query",
	}, s.handleRetrieve)

	if s.ports.Answer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question using only the course material, with sources",
		}, s.handleAsk)
	}
	if s.ports.Moderation != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "moderate",
			Description: "Check text against the content policy categories",
		}, s.handleModerate)
	}
	if s.ports.Quiz != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_quiz",
			Description: "Generate quiz questions grounded in the course material",
		}, s.handleGenerateQuiz)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := domain.RetrievalOptions{K: input.Limit, AllowedDocumentIDs: input.DocumentIDs}
	results := s.ports.Retrieval.RetrieveWithFallback(ctx, input.CourseID, input.Query, opts)

	output := RetrieveOutput{
		Results: make([]PassageOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = PassageOutput{
			Content:       results[i].Content,
			Score:         results[i].Score,
			DocumentTitle: results[i].Source.DocumentTitle,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, domain.AnswerResponse, error) {
	req := domain.AnswerRequest{
		CourseID:           input.CourseID,
		Query:              input.Query,
		History:            input.History,
		AllowedDocumentIDs: input.DocumentIDs,
	}
	resp, err := s.ports.Answer.Answer(ctx, req, s.ports.Policy)
	if err != nil {
		return nil, domain.AnswerResponse{}, err
	}
	return nil, *resp, nil
}

// handleModerate handles the moderate tool invocation.
func (s *Server) handleModerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ModerateInput,
) (*mcp.CallToolResult, domain.ModerationVerdict, error) {
	return nil, s.ports.Moderation.Moderate(ctx, input.Text, s.ports.Policy), nil
}

// handleGenerateQuiz handles the generate_quiz tool invocation.
func (s *Server) handleGenerateQuiz(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuizInput,
) (*mcp.CallToolResult, QuizOutput, error) {
	n := input.NumQuestions
	if n <= 0 {
		n = defaultQuizQuestions
	}
	req := domain.QuizRequest{
		CourseID:           input.CourseID,
		Topic:              input.Topic,
		Difficulty:         domain.ParseDifficulty(input.Difficulty),
		NumQuestions:       n,
		AllowedDocumentIDs: input.DocumentIDs,
	}
	questions, err := s.ports.Quiz.Generate(ctx, req)
	if err != nil {
		return nil, QuizOutput{}, err
	}
	return nil, QuizOutput{Questions: questions, Count: len(questions)}, nil
}
