package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

func TestIndexStore_SaveLoadIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewIndexStore()
	idx := &domain.DocumentIndex{
		StoreID:   "course_1_A",
		CourseID:  1,
		Dimension: 2,
		Chunks:    []domain.Chunk{{Text: "a"}},
		Vectors:   [][]float32{{1, 2}},
	}
	require.NoError(t, store.Save(ctx, idx))

	// mutating the caller's copy does not change stored state
	idx.Vectors[0][0] = 99
	got, err := store.Load(ctx, "course_1_A")
	require.NoError(t, err)
	assert.Equal(t, float32(1), got.Vectors[0][0])

	_, err = store.Load(ctx, "course_1_B")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIndexStore_RejectsInconsistent(t *testing.T) {
	store := NewIndexStore()
	err := store.Save(context.Background(), &domain.DocumentIndex{
		StoreID:   "x",
		Dimension: 1,
		Chunks:    []domain.Chunk{{Text: "a"}, {Text: "b"}},
		Vectors:   [][]float32{{1}},
	})
	assert.Error(t, err)
}

func TestIndexStore_Registry(t *testing.T) {
	ctx := context.Background()
	store := NewIndexStore()
	for _, id := range []string{"course_2_B", "course_2_A", "course_5_A"} {
		courseID := int64(2)
		if id == "course_5_A" {
			courseID = 5
		}
		require.NoError(t, store.Save(ctx, &domain.DocumentIndex{StoreID: id, CourseID: courseID, Dimension: 1}))
	}

	ids, err := store.StoreIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"course_2_A", "course_2_B"}, ids)

	courses, err := store.Courses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, courses)

	require.NoError(t, store.Delete(ctx, "course_2_A"))
	ids, _ = store.StoreIDs(ctx, 2)
	assert.Equal(t, []string{"course_2_B"}, ids)
}

func TestDocumentCatalog_Resolve(t *testing.T) {
	ctx := context.Background()
	c := NewDocumentCatalog()
	require.NoError(t, c.RegisterDocument(ctx, domain.DocumentRef{DocumentID: 1, CourseID: 7, Title: "A", StoreID: "course_7_A"}))
	require.NoError(t, c.RegisterDocument(ctx, domain.DocumentRef{DocumentID: 2, CourseID: 7, Title: "B"}))
	require.NoError(t, c.RegisterDocument(ctx, domain.DocumentRef{DocumentID: 3, CourseID: 8, Title: "C", StoreID: "course_8_C"}))

	refs, err := c.Resolve(ctx, 7, []int64{1, 2, 3, 1, 42})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "course_7_A", refs[0].StoreID)

	docs, err := c.Documents(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	require.NoError(t, c.RemoveDocument(ctx, 1))
	refs, _ = c.Resolve(ctx, 7, []int64{1})
	assert.Empty(t, refs)
}

func TestAttemptStore_RecentAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewAttemptStore()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, pct := range []float64{10, 20, 30, 40, 50, 60} {
		require.NoError(t, s.SaveAttempt(ctx, domain.AttemptRecord{
			StudentID:   1,
			Percentage:  pct,
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, s.SaveAttempt(ctx, domain.AttemptRecord{StudentID: 2, Percentage: 99, CompletedAt: base}))

	recent, err := s.RecentAttempts(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, recent, 5)
	assert.Equal(t, 60.0, recent[0].Percentage)
	assert.Equal(t, 20.0, recent[4].Percentage)

	all, err := s.RecentAttempts(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestAttemptStore_SameInstantNewestInsertedFirst(t *testing.T) {
	ctx := context.Background()
	s := NewAttemptStore()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveAttempt(ctx, domain.AttemptRecord{StudentID: 1, Percentage: 1, CompletedAt: at}))
	require.NoError(t, s.SaveAttempt(ctx, domain.AttemptRecord{StudentID: 1, Percentage: 2, CompletedAt: at}))

	recent, err := s.RecentAttempts(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 2.0, recent[0].Percentage)
}

func TestAttemptStore_Competency(t *testing.T) {
	ctx := context.Background()
	s := NewAttemptStore()

	_, ok, err := s.Competency(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetCompetency(ctx, 1, 72))
	score, ok, err := s.Competency(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 72, score)
}

func TestModerationLog_Recent(t *testing.T) {
	ctx := context.Background()
	l := NewModerationLog()
	for _, a := range []domain.ModerationAction{domain.ModerationActionAllowed, domain.ModerationActionWarned, domain.ModerationActionBlocked} {
		require.NoError(t, l.Record(ctx, domain.ModerationLogEntry{Action: a}))
	}

	recent, err := l.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, domain.ModerationActionBlocked, recent[0].Action)
	assert.Equal(t, domain.ModerationActionWarned, recent[1].Action)
}
