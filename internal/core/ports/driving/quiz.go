package driving

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// QuizService generates quizzes grounded in course material.
type QuizService interface {
	// Generate returns the parsed questions, or one of domain.ErrNoMaterial,
	// domain.ErrProviderUnavailable or a *domain.MalformedResponseError.
	Generate(ctx context.Context, req domain.QuizRequest) ([]domain.QuizQuestion, error)
}
