package driven

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// AttemptStore persists completed quiz attempts and competency scores.
type AttemptStore interface {
	// SaveAttempt records a completed attempt.
	SaveAttempt(ctx context.Context, attempt domain.AttemptRecord) error

	// RecentAttempts returns up to limit attempts for the student, newest first.
	RecentAttempts(ctx context.Context, studentID int64, limit int) ([]domain.AttemptRecord, error)

	// Competency returns the stored score. ok is false when none exists yet.
	Competency(ctx context.Context, studentID int64) (score int, ok bool, err error)

	// SetCompetency stores the score.
	SetCompetency(ctx context.Context, studentID int64, score int) error
}

// ModerationLog records moderation decisions for audit.
type ModerationLog interface {
	// Record appends an entry.
	Record(ctx context.Context, entry domain.ModerationLogEntry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.ModerationLogEntry, error)
}
