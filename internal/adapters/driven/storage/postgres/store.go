// Package postgres implements the relational ports on PostgreSQL using pgx.
//
// It is used when the engine shares the learning platform's database. The
// schema mirrors the SQLite adapter and is created on Initialize.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// schema is applied by Initialize. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS course_materials (
		document_id BIGINT PRIMARY KEY,
		course_id   BIGINT NOT NULL,
		title       TEXT   NOT NULL,
		store_id    TEXT   NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_course_materials_course ON course_materials (course_id)`,
	`CREATE TABLE IF NOT EXISTS quiz_attempts (
		seq          BIGSERIAL PRIMARY KEY,
		id           TEXT             NOT NULL UNIQUE,
		student_id   BIGINT           NOT NULL,
		quiz_id      BIGINT           NOT NULL,
		percentage   DOUBLE PRECISION NOT NULL,
		completed_at TIMESTAMPTZ      NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_attempts_student ON quiz_attempts (student_id, completed_at DESC)`,
	`CREATE TABLE IF NOT EXISTS student_competency (
		student_id BIGINT PRIMARY KEY,
		score      INTEGER     NOT NULL CHECK (score BETWEEN 0 AND 100),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS moderation_logs (
		seq          BIGSERIAL PRIMARY KEY,
		id           TEXT             NOT NULL UNIQUE,
		content      TEXT             NOT NULL,
		category     TEXT             NOT NULL,
		confidence   DOUBLE PRECISION NOT NULL,
		flagged      BOOLEAN          NOT NULL DEFAULT false,
		action_taken TEXT             NOT NULL,
		meta_data    JSONB            NOT NULL DEFAULT '{}',
		created_at   TIMESTAMPTZ      NOT NULL
	)`,
}

// Store holds a connection pool shared by the port implementations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres: dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Initialize creates the tables and indices if they do not exist.
func (s *Store) Initialize(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// DocumentCatalog returns a DocumentCatalog backed by this store.
func (s *Store) DocumentCatalog() driven.DocumentCatalog {
	return &documentCatalog{pool: s.pool}
}

// AttemptStore returns an AttemptStore backed by this store.
func (s *Store) AttemptStore() driven.AttemptStore {
	return &attemptStore{pool: s.pool}
}

// ModerationLog returns a ModerationLog backed by this store.
func (s *Store) ModerationLog() driven.ModerationLog {
	return &moderationLog{pool: s.pool}
}

// limitArg maps a non-positive limit to NULL, which Postgres treats as no limit.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

type documentCatalog struct {
	pool *pgxpool.Pool
}

var _ driven.DocumentCatalog = (*documentCatalog)(nil)

func (c *documentCatalog) RegisterDocument(ctx context.Context, ref domain.DocumentRef) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO course_materials (document_id, course_id, title, store_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (document_id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			title = EXCLUDED.title,
			store_id = EXCLUDED.store_id
	`, ref.DocumentID, ref.CourseID, ref.Title, ref.StoreID)
	if err != nil {
		return fmt.Errorf("registering document %d: %w", ref.DocumentID, err)
	}
	return nil
}

func (c *documentCatalog) Resolve(ctx context.Context, courseID int64, documentIDs []int64) ([]domain.DocumentRef, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	rows, err := c.pool.Query(ctx, `
		SELECT document_id, course_id, title, store_id
		FROM course_materials
		WHERE course_id = $1 AND store_id <> '' AND document_id = ANY($2)
		ORDER BY document_id
	`, courseID, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return collectRefs(rows)
}

func (c *documentCatalog) Documents(ctx context.Context, courseID int64) ([]domain.DocumentRef, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT document_id, course_id, title, store_id
		FROM course_materials
		WHERE course_id = $1
		ORDER BY document_id
	`, courseID)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	return collectRefs(rows)
}

func collectRefs(rows pgx.Rows) ([]domain.DocumentRef, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DocumentRef, error) {
		var ref domain.DocumentRef
		err := row.Scan(&ref.DocumentID, &ref.CourseID, &ref.Title, &ref.StoreID)
		return ref, err
	})
}

func (c *documentCatalog) RemoveDocument(ctx context.Context, documentID int64) error {
	if _, err := c.pool.Exec(ctx, "DELETE FROM course_materials WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("removing document %d: %w", documentID, err)
	}
	return nil
}

type attemptStore struct {
	pool *pgxpool.Pool
}

var _ driven.AttemptStore = (*attemptStore)(nil)

func (s *attemptStore) SaveAttempt(ctx context.Context, a domain.AttemptRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, student_id, quiz_id, percentage, completed_at)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.StudentID, a.QuizID, a.Percentage, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("saving attempt %s: %w", a.ID, err)
	}
	return nil
}

func (s *attemptStore) RecentAttempts(ctx context.Context, studentID int64, limit int) ([]domain.AttemptRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, student_id, quiz_id, percentage, completed_at
		FROM quiz_attempts
		WHERE student_id = $1
		ORDER BY completed_at DESC, seq DESC
		LIMIT $2
	`, studentID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AttemptRecord, error) {
		var a domain.AttemptRecord
		err := row.Scan(&a.ID, &a.StudentID, &a.QuizID, &a.Percentage, &a.CompletedAt)
		a.CompletedAt = a.CompletedAt.UTC()
		return a, err
	})
}

func (s *attemptStore) Competency(ctx context.Context, studentID int64) (int, bool, error) {
	var score int
	err := s.pool.QueryRow(ctx,
		"SELECT score FROM student_competency WHERE student_id = $1", studentID).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying competency: %w", err)
	}
	return score, true, nil
}

func (s *attemptStore) SetCompetency(ctx context.Context, studentID int64, score int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO student_competency (student_id, score, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (student_id) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = EXCLUDED.updated_at
	`, studentID, score)
	if err != nil {
		return fmt.Errorf("setting competency: %w", err)
	}
	return nil
}

type moderationLog struct {
	pool *pgxpool.Pool
}

var _ driven.ModerationLog = (*moderationLog)(nil)

func (l *moderationLog) Record(ctx context.Context, e domain.ModerationLogEntry) error {
	meta := []byte("{}")
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		meta = b
	}
	_, err := l.pool.Exec(ctx, `
		INSERT INTO moderation_logs (id, content, category, confidence, flagged, action_taken, meta_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8)
	`, e.ID, e.Content, string(e.Category), e.Confidence, e.Flagged, string(e.Action), string(meta), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording moderation entry: %w", err)
	}
	return nil
}

func (l *moderationLog) Recent(ctx context.Context, limit int) ([]domain.ModerationLogEntry, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, content, category, confidence, flagged, action_taken, meta_data::text, created_at
		FROM moderation_logs
		ORDER BY seq DESC
		LIMIT $1
	`, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("querying moderation log: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ModerationLogEntry, error) {
		var (
			e                domain.ModerationLogEntry
			category, action string
			meta             string
			createdAt        time.Time
		)
		if err := row.Scan(&e.ID, &e.Content, &category, &e.Confidence, &e.Flagged, &action, &meta, &createdAt); err != nil {
			return e, err
		}
		e.Category = domain.ModerationCategory(category)
		e.Action = domain.ModerationAction(action)
		e.CreatedAt = createdAt.UTC()
		if meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
				return e, fmt.Errorf("decoding metadata: %w", err)
			}
		}
		return e, nil
	})
}
