package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// Ensure AttemptStore and ModerationLog implement the interfaces.
var (
	_ driven.AttemptStore  = (*AttemptStore)(nil)
	_ driven.ModerationLog = (*ModerationLog)(nil)
)

// AttemptStore is an in-memory implementation of driven.AttemptStore.
type AttemptStore struct {
	mu         sync.RWMutex
	attempts   map[int64][]domain.AttemptRecord
	competency map[int64]int
}

// NewAttemptStore creates a new in-memory attempt store.
func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts:   make(map[int64][]domain.AttemptRecord),
		competency: make(map[int64]int),
	}
}

// SaveAttempt records a completed attempt.
func (s *AttemptStore) SaveAttempt(_ context.Context, attempt domain.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.StudentID] = append(s.attempts[attempt.StudentID], attempt)
	return nil
}

// RecentAttempts returns up to limit attempts, newest first.
// Attempts completed at the same instant are ordered by insertion, latest first.
func (s *AttemptStore) RecentAttempts(_ context.Context, studentID int64, limit int) ([]domain.AttemptRecord, error) {
	s.mu.RLock()
	stored := s.attempts[studentID]
	out := make([]domain.AttemptRecord, len(stored))
	for i, a := range stored {
		out[len(stored)-1-i] = a
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Competency returns the stored score.
func (s *AttemptStore) Competency(_ context.Context, studentID int64) (int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.competency[studentID]
	return score, ok, nil
}

// SetCompetency stores the score.
func (s *AttemptStore) SetCompetency(_ context.Context, studentID int64, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.competency[studentID] = score
	return nil
}

// ModerationLog is an in-memory implementation of driven.ModerationLog.
type ModerationLog struct {
	mu      sync.RWMutex
	entries []domain.ModerationLogEntry
}

// NewModerationLog creates a new in-memory moderation log.
func NewModerationLog() *ModerationLog {
	return &ModerationLog{}
}

// Record appends an entry.
func (l *ModerationLog) Record(_ context.Context, entry domain.ModerationLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *ModerationLog) Recent(_ context.Context, limit int) ([]domain.ModerationLogEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.entries)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]domain.ModerationLogEntry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out, nil
}
