package driving

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// GradingService grades attempts and maintains competency scores.
type GradingService interface {
	// Grade scores answers against question keys.
	Grade(questions []domain.GradableQuestion, answers []domain.SubmittedAnswer) domain.GradedAttempt

	// RecordAttempt persists a graded attempt and updates the student's competency.
	// It returns the new competency score.
	RecordAttempt(ctx context.Context, studentID, quizID int64, attempt domain.GradedAttempt) (int, error)

	// UpdateCompetency folds the newest attempt percentage into the student's score.
	// The attempt must already be stored when called through RecordAttempt.
	UpdateCompetency(ctx context.Context, studentID int64, newAttemptPercentage float64) (int, error)

	// Competency returns the current score, or domain.DefaultCompetency.
	Competency(ctx context.Context, studentID int64) (int, error)

	// AdaptiveDifficulty picks a quiz difficulty for the student.
	AdaptiveDifficulty(ctx context.Context, studentID int64) (domain.Difficulty, error)
}
