package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// dbFile is the database file name within the data directory.
const dbFile = "learnly.db"

// Store is a unified SQLite-based storage that provides access to
// the relational ports through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.learnly/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".learnly", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// WAL lets readers proceed while a writer holds the lock.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentCatalog returns a DocumentCatalog backed by this store.
func (s *Store) DocumentCatalog() driven.DocumentCatalog {
	return &documentCatalog{db: s.db}
}

// AttemptStore returns an AttemptStore backed by this store.
func (s *Store) AttemptStore() driven.AttemptStore {
	return &attemptStore{db: s.db}
}

// ModerationLog returns a ModerationLog backed by this store.
func (s *Store) ModerationLog() driven.ModerationLog {
	return &moderationLog{db: s.db}
}

// migrate runs all pending up migrations in version order.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Catalog ====================

type documentCatalog struct {
	db *sql.DB
}

var _ driven.DocumentCatalog = (*documentCatalog)(nil)

// RegisterDocument creates or updates a document reference.
func (c *documentCatalog) RegisterDocument(ctx context.Context, ref domain.DocumentRef) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO course_materials (document_id, course_id, title, store_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			course_id = excluded.course_id,
			title = excluded.title,
			store_id = excluded.store_id
	`, ref.DocumentID, ref.CourseID, ref.Title, ref.StoreID)
	if err != nil {
		return fmt.Errorf("registering document %d: %w", ref.DocumentID, err)
	}
	return nil
}

// Resolve returns the indexed documents of the course among documentIDs.
func (c *documentCatalog) Resolve(ctx context.Context, courseID int64, documentIDs []int64) ([]domain.DocumentRef, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(documentIDs)), ",")
	args := make([]any, 0, len(documentIDs)+1)
	args = append(args, courseID)
	for _, id := range documentIDs {
		args = append(args, id)
	}

	//nolint:gosec // placeholders contains only "?" markers.
	query := `
		SELECT document_id, course_id, title, store_id
		FROM course_materials
		WHERE course_id = ? AND store_id != '' AND document_id IN (` + placeholders + `)
		ORDER BY document_id`
	return c.query(ctx, query, args...)
}

// Documents lists every document of a course ordered by id.
func (c *documentCatalog) Documents(ctx context.Context, courseID int64) ([]domain.DocumentRef, error) {
	return c.query(ctx, `
		SELECT document_id, course_id, title, store_id
		FROM course_materials
		WHERE course_id = ?
		ORDER BY document_id`, courseID)
}

func (c *documentCatalog) query(ctx context.Context, query string, args ...any) ([]domain.DocumentRef, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var refs []domain.DocumentRef
	for rows.Next() {
		var ref domain.DocumentRef
		if err := rows.Scan(&ref.DocumentID, &ref.CourseID, &ref.Title, &ref.StoreID); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// RemoveDocument deletes a document reference.
func (c *documentCatalog) RemoveDocument(ctx context.Context, documentID int64) error {
	if _, err := c.db.ExecContext(ctx, "DELETE FROM course_materials WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("removing document %d: %w", documentID, err)
	}
	return nil
}

// ==================== Attempt Store ====================

type attemptStore struct {
	db *sql.DB
}

var _ driven.AttemptStore = (*attemptStore)(nil)

// SaveAttempt records a completed attempt.
func (s *attemptStore) SaveAttempt(ctx context.Context, a domain.AttemptRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (id, student_id, quiz_id, percentage, completed_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.StudentID, a.QuizID, a.Percentage, a.CompletedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("saving attempt %s: %w", a.ID, err)
	}
	return nil
}

// RecentAttempts returns up to limit attempts, newest first.
// Ties on completion time are broken by insertion order, latest first.
func (s *attemptStore) RecentAttempts(ctx context.Context, studentID int64, limit int) ([]domain.AttemptRecord, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, quiz_id, percentage, completed_at
		FROM quiz_attempts
		WHERE student_id = ?
		ORDER BY completed_at DESC, seq DESC
		LIMIT ?
	`, studentID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying attempts: %w", err)
	}
	defer rows.Close()

	var out []domain.AttemptRecord
	for rows.Next() {
		var (
			a  domain.AttemptRecord
			ns int64
		)
		if err := rows.Scan(&a.ID, &a.StudentID, &a.QuizID, &a.Percentage, &ns); err != nil {
			return nil, fmt.Errorf("scanning attempt: %w", err)
		}
		a.CompletedAt = time.Unix(0, ns).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

// Competency returns the stored score.
func (s *attemptStore) Competency(ctx context.Context, studentID int64) (int, bool, error) {
	var score int
	err := s.db.QueryRowContext(ctx,
		"SELECT score FROM student_competency WHERE student_id = ?", studentID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("querying competency: %w", err)
	}
	return score, true, nil
}

// SetCompetency stores the score.
func (s *attemptStore) SetCompetency(ctx context.Context, studentID int64, score int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO student_competency (student_id, score, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			score = excluded.score,
			updated_at = excluded.updated_at
	`, studentID, score, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("setting competency: %w", err)
	}
	return nil
}

// ==================== Moderation Log ====================

type moderationLog struct {
	db *sql.DB
}

var _ driven.ModerationLog = (*moderationLog)(nil)

// Record appends an entry.
func (l *moderationLog) Record(ctx context.Context, e domain.ModerationLogEntry) error {
	meta := "{}"
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		meta = string(b)
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO moderation_logs (id, content, category, confidence, flagged, action_taken, meta_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Content, string(e.Category), e.Confidence, e.Flagged, string(e.Action), meta, e.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("recording moderation entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *moderationLog) Recent(ctx context.Context, limit int) ([]domain.ModerationLogEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, content, category, confidence, flagged, action_taken, meta_data, created_at
		FROM moderation_logs
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying moderation log: %w", err)
	}
	defer rows.Close()

	var out []domain.ModerationLogEntry
	for rows.Next() {
		var (
			e        domain.ModerationLogEntry
			category string
			action   string
			meta     string
			ns       int64
		)
		if err := rows.Scan(&e.ID, &e.Content, &category, &e.Confidence, &e.Flagged, &action, &meta, &ns); err != nil {
			return nil, fmt.Errorf("scanning moderation entry: %w", err)
		}
		e.Category = domain.ModerationCategory(category)
		e.Action = domain.ModerationAction(action)
		e.CreatedAt = time.Unix(0, ns).UTC()
		if meta != "{}" {
			if err := json.Unmarshal([]byte(meta), &e.Metadata); err != nil {
				return nil, fmt.Errorf("decoding metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
