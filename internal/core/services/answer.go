package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// Ensure AnswerService implements the interfaces.
var (
	_ driving.AnswerService   = (*AnswerService)(nil)
	_ driven.PromptStoreAware = (*AnswerService)(nil)
)

// answerTemperature is the sampling temperature for answers.
const answerTemperature = 0.7

// AnswerService answers questions from course material, gated by moderation
// on both the question and the generated answer.
type AnswerService struct {
	promptLoader
	retrieval  driving.RetrievalService
	moderation driving.ModerationService
	llm        driven.LLMService
	topK       int
}

// NewAnswerService creates an answer service.
// llm may be nil; Answer then fails once it needs to generate.
func NewAnswerService(
	retrieval driving.RetrievalService,
	moderation driving.ModerationService,
	llm driven.LLMService,
	topK int,
) *AnswerService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &AnswerService{
		retrieval:  retrieval,
		moderation: moderation,
		llm:        llm,
		topK:       topK,
	}
}

// Answer runs the moderated retrieve-then-generate flow.
func (s *AnswerService) Answer(
	ctx context.Context,
	req domain.AnswerRequest,
	policy domain.ModerationPolicy,
) (*domain.AnswerResponse, error) {
	logger.Section("Answer")

	verdict := s.moderation.Moderate(ctx, req.Query, policy)
	if !verdict.Passed {
		s.audit(ctx, req, req.Query, verdict, domain.ModerationActionBlocked)
		return &domain.AnswerResponse{
			Answer:             domain.RefusalMessage,
			Sources:            []domain.RetrievalResult{},
			ModerationPassed:   false,
			ModerationWarnings: verdict.Warnings,
		}, nil
	}

	results := s.retrieval.Retrieve(ctx, req.CourseID, req.Query, domain.RetrievalOptions{
		K:                  s.topK,
		AllowedDocumentIDs: req.AllowedDocumentIDs,
	})
	if len(results) == 0 {
		return &domain.AnswerResponse{
			Answer:             domain.InsufficientMaterialMessage,
			Sources:            []domain.RetrievalResult{},
			ModerationPassed:   true,
			ModerationWarnings: []string{},
		}, nil
	}

	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	messages := s.buildMessages(req, results)
	answer, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: answerTemperature})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, domain.ErrProviderUnavailable
	}

	after := s.moderation.Moderate(ctx, answer, policy)
	if !after.Passed {
		s.audit(ctx, req, answer, after, domain.ModerationActionWarned)
	}

	return &domain.AnswerResponse{
		Answer:             answer,
		Sources:            sourceSnippets(results),
		Confidence:         meanScore(results),
		ModerationPassed:   after.Passed,
		ModerationWarnings: after.Warnings,
	}, nil
}

// buildMessages keeps the last few history turns and appends one user
// message carrying the prelude, the context and the question.
func (s *AnswerService) buildMessages(req domain.AnswerRequest, results []domain.RetrievalResult) []driven.ChatMessage {
	history := req.History
	if len(history) > domain.HistoryWindow {
		history = history[len(history)-domain.HistoryWindow:]
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Content
	}

	prompt := fmt.Sprintf(s.load(driven.PromptAnswer),
		s.load(driven.PromptAnswerSystem),
		strings.Join(passages, "\n\n"),
		req.Query,
	)

	messages := make([]driven.ChatMessage, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, driven.ChatMessage{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: prompt})
}

func (s *AnswerService) audit(
	ctx context.Context,
	req domain.AnswerRequest,
	text string,
	verdict domain.ModerationVerdict,
	action domain.ModerationAction,
) {
	meta := map[string]string{"course_id": fmt.Sprint(req.CourseID)}
	if err := s.moderation.Audit(ctx, text, verdict, action, meta); err != nil {
		logger.Warn("Audit failed: %v", err)
	}
}

// sourceSnippets truncates passages for display.
func sourceSnippets(results []domain.RetrievalResult) []domain.RetrievalResult {
	out := make([]domain.RetrievalResult, len(results))
	for i, r := range results {
		r.Content = snippet(r.Content, domain.SourceSnippetLength) + "..."
		out[i] = r
	}
	return out
}

// snippet returns at most n runes of s.
func snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func meanScore(results []domain.RetrievalResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum float64
	for _, r := range results {
		sum += r.Score
	}
	return sum / float64(len(results))
}
