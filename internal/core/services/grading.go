package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// Ensure GradingService implements the interface.
var _ driving.GradingService = (*GradingService)(nil)

// GradingService grades attempts and maintains per-student competency.
// Competency updates for one student are serialised; different students
// never contend.
type GradingService struct {
	attempts driven.AttemptStore
	locks    *keyedLock
	now      func() time.Time
}

// NewGradingService creates a grading service.
func NewGradingService(attempts driven.AttemptStore) *GradingService {
	return &GradingService{
		attempts: attempts,
		locks:    newKeyedLock(),
		now:      time.Now,
	}
}

// Grade scores each question against the submission with the same id.
// Questions without a submission are graded as a blank answer.
func (s *GradingService) Grade(questions []domain.GradableQuestion, answers []domain.SubmittedAnswer) domain.GradedAttempt {
	submitted := make(map[int64]string, len(answers))
	for _, a := range answers {
		submitted[a.QuestionID] = a.StudentAnswer
	}

	attempt := domain.GradedAttempt{PerQuestion: make([]domain.QuestionResult, 0, len(questions))}
	for _, q := range questions {
		points := max(q.Points, 0)
		answer := submitted[q.ID]
		correct := q.Key.Check(answer)

		earned := 0.0
		if correct {
			earned = points
		}
		attempt.MaxPoints += points
		attempt.EarnedPoints += earned
		attempt.PerQuestion = append(attempt.PerQuestion, domain.QuestionResult{
			QuestionID:    q.ID,
			StudentAnswer: answer,
			CorrectAnswer: q.Key.Correct(),
			IsCorrect:     correct,
			PointsEarned:  earned,
			Explanation:   q.Explanation,
		})
	}

	if attempt.MaxPoints > 0 {
		attempt.Percentage = attempt.EarnedPoints / attempt.MaxPoints * 100
	}
	return attempt
}

// RecordAttempt stores a graded attempt and folds it into the student's
// competency. The stored attempt is part of the history used for the blend.
func (s *GradingService) RecordAttempt(ctx context.Context, studentID, quizID int64, attempt domain.GradedAttempt) (int, error) {
	unlock := s.locks.Lock(studentKey(studentID))
	defer unlock()

	record := domain.AttemptRecord{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		QuizID:      quizID,
		Percentage:  attempt.Percentage,
		CompletedAt: s.now(),
	}
	if err := s.attempts.SaveAttempt(ctx, record); err != nil {
		return 0, fmt.Errorf("save attempt: %w", err)
	}

	recent, err := s.attempts.RecentAttempts(ctx, studentID, domain.CompetencyHistoryWindow)
	if err != nil {
		return 0, fmt.Errorf("load recent attempts: %w", err)
	}
	return s.blend(ctx, studentID, percentages(recent))
}

// UpdateCompetency folds a new percentage into the score without storing
// an attempt. The newest stored attempts fill the rest of the window.
func (s *GradingService) UpdateCompetency(ctx context.Context, studentID int64, newAttemptPercentage float64) (int, error) {
	unlock := s.locks.Lock(studentKey(studentID))
	defer unlock()

	recent, err := s.attempts.RecentAttempts(ctx, studentID, domain.CompetencyHistoryWindow-1)
	if err != nil {
		return 0, fmt.Errorf("load recent attempts: %w", err)
	}
	history := append([]float64{newAttemptPercentage}, percentages(recent)...)
	return s.blend(ctx, studentID, history)
}

// blend must be called with the student's lock held.
func (s *GradingService) blend(ctx context.Context, studentID int64, newestFirst []float64) (int, error) {
	old, err := s.current(ctx, studentID)
	if err != nil {
		return 0, err
	}
	avg, ok := domain.WeightedRecentAverage(newestFirst)
	if !ok {
		return old, nil
	}

	score := domain.BlendCompetency(old, avg)
	if err := s.attempts.SetCompetency(ctx, studentID, score); err != nil {
		return 0, fmt.Errorf("save competency: %w", err)
	}
	logger.Debug("Student %d competency %d -> %d (weighted avg %.1f)", studentID, old, score, avg)
	return score, nil
}

// Competency returns the stored score, or domain.DefaultCompetency.
func (s *GradingService) Competency(ctx context.Context, studentID int64) (int, error) {
	unlock := s.locks.RLock(studentKey(studentID))
	defer unlock()
	return s.current(ctx, studentID)
}

func (s *GradingService) current(ctx context.Context, studentID int64) (int, error) {
	score, ok, err := s.attempts.Competency(ctx, studentID)
	if err != nil {
		return 0, fmt.Errorf("load competency: %w", err)
	}
	if !ok {
		return domain.DefaultCompetency, nil
	}
	return domain.ClampCompetency(score), nil
}

// AdaptiveDifficulty picks a difficulty from the mean of the student's
// recent attempts. Students without attempts get medium.
func (s *GradingService) AdaptiveDifficulty(ctx context.Context, studentID int64) (domain.Difficulty, error) {
	recent, err := s.attempts.RecentAttempts(ctx, studentID, domain.CompetencyHistoryWindow)
	if err != nil {
		return "", fmt.Errorf("load recent attempts: %w", err)
	}
	return domain.DifficultyForHistory(percentages(recent)), nil
}

func percentages(records []domain.AttemptRecord) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		out[i] = r.Percentage
	}
	return out
}

func studentKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
