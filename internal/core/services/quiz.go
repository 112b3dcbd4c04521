package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// Ensure QuizService implements the interfaces.
var (
	_ driving.QuizService     = (*QuizService)(nil)
	_ driven.PromptStoreAware = (*QuizService)(nil)
)

const (
	// DefaultQuizQuestions is used when a request does not specify a count.
	DefaultQuizQuestions = 5

	// DefaultQuizTopK is the number of passages gathered as quiz material.
	DefaultQuizTopK = 5

	quizTemperature = 0.7
)

// QuizService generates quizzes grounded in retrieved course material.
// It fails rather than inventing questions when material or a usable
// provider response is missing.
type QuizService struct {
	promptLoader
	retrieval driving.RetrievalService
	llm       driven.LLMService
	topK      int
}

// NewQuizService creates a quiz service.
func NewQuizService(retrieval driving.RetrievalService, llm driven.LLMService, topK int) *QuizService {
	if topK <= 0 {
		topK = DefaultQuizTopK
	}
	return &QuizService{retrieval: retrieval, llm: llm, topK: topK}
}

// Generate retrieves material, asks the provider for questions as JSON and
// parses the response.
func (s *QuizService) Generate(ctx context.Context, req domain.QuizRequest) ([]domain.QuizQuestion, error) {
	logger.Section("Quiz")
	n := req.NumQuestions
	if n <= 0 {
		n = DefaultQuizQuestions
	}
	difficulty := req.Difficulty
	if !difficulty.IsValid() {
		difficulty = domain.DifficultyMedium
	}

	topic := strings.TrimSpace(req.Topic)
	query, focus := domain.QuizSummaryQuery, domain.QuizDefaultFocus
	if topic != "" {
		query, focus = fmt.Sprintf(domain.QuizTopicQueryFormat, topic), topic
	}

	results := s.retrieval.RetrieveWithFallback(ctx, req.CourseID, query, domain.RetrievalOptions{
		K:                  s.topK,
		AllowedDocumentIDs: req.AllowedDocumentIDs,
	})
	if len(results) == 0 {
		return nil, domain.ErrNoMaterial
	}
	if s.llm == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, domain.ErrLLMUnavailable)
	}

	passages := make([]string, len(results))
	for i, r := range results {
		passages[i] = r.Content
	}
	prompt := fmt.Sprintf(s.load(driven.PromptQuiz), n, strings.Join(passages, "\n\n"), difficulty, focus)

	done := logger.Timed("quiz generation")
	raw, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		Temperature: quizTemperature,
		JSONMode:    true,
	})
	done()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrProviderUnavailable
	}

	questions, err := ParseQuiz(raw, difficulty)
	if err != nil {
		logger.Warn("Quiz response rejected: %v", err)
		logger.Debug("Raw response: %s", snippet(raw, 1000))
		return nil, err
	}
	if len(questions) != n {
		logger.Info("Requested %d questions, provider returned %d", n, len(questions))
	}
	return questions, nil
}
