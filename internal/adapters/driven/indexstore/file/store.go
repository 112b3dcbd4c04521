package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

const (
	storesDir    = "stores"
	locksDir     = "locks"
	tmpDir       = "tmp"
	registryFile = "registry.json"

	// DefaultLockRetry is how often a contended lock is retried.
	DefaultLockRetry = 50 * time.Millisecond
)

// Verify interface compliance.
var _ driven.IndexStore = (*Store)(nil)

// registryEntry records which course a store id belongs to.
type registryEntry struct {
	CourseID   int64 `json:"course_id"`
	DocumentID int64 `json:"document_id"`
}

// Store is a filesystem-backed IndexStore.
type Store struct {
	root      string
	lockRetry time.Duration

	// regMu serialises registry read-modify-write within this process;
	// the registry flock does the same across processes.
	regMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLockRetry sets the polling interval used while waiting for a lock.
func WithLockRetry(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockRetry = d
		}
	}
}

// New creates a Store rooted at dir, creating the directory layout.
func New(dir string, opts ...Option) (*Store, error) {
	s := &Store{root: dir, lockRetry: DefaultLockRetry}
	for _, opt := range opts {
		opt(s)
	}
	for _, sub := range []string{storesDir, locksDir, tmpDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create index dir %s: %w", sub, err)
		}
	}
	return s, nil
}

// Root returns the store directory.
func (s *Store) Root() string { return s.root }

// Save writes the index to a temporary directory and swaps it into place.
func (s *Store) Save(ctx context.Context, idx *domain.DocumentIndex) error {
	if idx == nil || idx.StoreID == "" {
		return fmt.Errorf("%w: missing store id", domain.ErrInvalidInput)
	}

	unlock, err := s.lock(ctx, idx.StoreID, true)
	if err != nil {
		return err
	}
	defer unlock()

	tmp := filepath.Join(s.root, tmpDir, "build-"+uuid.NewString())
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := writeIndex(tmp, idx); err != nil {
		return err
	}
	if err := atomicSwap(tmp, s.storeDir(idx.StoreID)); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}

	return s.updateRegistry(ctx, func(reg map[string]registryEntry) {
		reg[idx.StoreID] = registryEntry{CourseID: idx.CourseID, DocumentID: idx.DocumentID}
	})
}

// Load reads a stored index. Unreadable or inconsistent data is reported as
// domain.ErrNotFound. If a swap was interrupted, the previous index is used.
func (s *Store) Load(ctx context.Context, storeID string) (*domain.DocumentIndex, error) {
	unlock, err := s.lock(ctx, storeID, false)
	if err != nil {
		return nil, err
	}
	defer unlock()

	dir := s.storeDir(storeID)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		dir += ".bak"
	}

	idx, err := readIndex(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Index %s unreadable: %v", storeID, err)
		}
		return nil, fmt.Errorf("index %s: %w", storeID, domain.ErrNotFound)
	}
	if !idx.Consistent() {
		logger.Warn("Index %s inconsistent: %d chunks, %d vectors", storeID, len(idx.Chunks), len(idx.Vectors))
		return nil, fmt.Errorf("index %s: %w", storeID, domain.ErrNotFound)
	}
	return idx, nil
}

// Delete removes the index directory and its registry entry.
func (s *Store) Delete(ctx context.Context, storeID string) error {
	unlock, err := s.lock(ctx, storeID, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.updateRegistry(ctx, func(reg map[string]registryEntry) {
		delete(reg, storeID)
	}); err != nil {
		return err
	}

	dir := s.storeDir(storeID)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("cannot remove index %s: %w", storeID, err)
	}
	_ = os.RemoveAll(dir + ".bak")
	return nil
}

// StoreIDs returns the store ids registered for a course, sorted.
func (s *Store) StoreIDs(ctx context.Context, courseID int64) ([]string, error) {
	reg, err := s.readRegistryLocked(ctx)
	if err != nil {
		return nil, err
	}
	var ids []string
	for id, e := range reg {
		if e.CourseID == courseID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Courses returns every course id with a registered index, ascending.
func (s *Store) Courses(ctx context.Context) ([]int64, error) {
	reg, err := s.readRegistryLocked(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	var out []int64
	for _, e := range reg {
		if !seen[e.CourseID] {
			seen[e.CourseID] = true
			out = append(out, e.CourseID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) storeDir(storeID string) string {
	return filepath.Join(s.root, storesDir, url.PathEscape(storeID))
}

func (s *Store) lockPath(storeID string) string {
	return filepath.Join(s.root, locksDir, url.PathEscape(storeID)+".lock")
}

// lock takes the advisory lock for a store id, exclusive for writers.
func (s *Store) lock(ctx context.Context, storeID string, exclusive bool) (func(), error) {
	return s.flock(ctx, s.lockPath(storeID), exclusive)
}

func (s *Store) flock(ctx context.Context, path string, exclusive bool) (func(), error) {
	l := flock.New(path)
	var (
		locked bool
		err    error
	)
	if exclusive {
		locked, err = l.TryLockContext(ctx, s.lockRetry)
	} else {
		locked, err = l.TryRLockContext(ctx, s.lockRetry)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot acquire lock %s: %w", filepath.Base(path), err)
	}
	if !locked {
		return nil, fmt.Errorf("cannot acquire lock %s", filepath.Base(path))
	}
	return func() { _ = l.Unlock() }, nil
}

func (s *Store) registryPath() string {
	return filepath.Join(s.root, registryFile)
}

func (s *Store) readRegistryLocked(ctx context.Context) (map[string]registryEntry, error) {
	unlock, err := s.flock(ctx, s.registryPath()+".lock", false)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.readRegistry()
}

func (s *Store) readRegistry() (map[string]registryEntry, error) {
	reg := make(map[string]registryEntry)
	b, err := os.ReadFile(s.registryPath())
	if errors.Is(err, os.ErrNotExist) {
		return reg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read registry: %w", err)
	}
	if err := json.Unmarshal(b, &reg); err != nil {
		return nil, fmt.Errorf("invalid registry JSON: %w", err)
	}
	return reg, nil
}

// updateRegistry applies fn to the registry and replaces the file atomically.
func (s *Store) updateRegistry(ctx context.Context, fn func(map[string]registryEntry)) error {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	unlock, err := s.flock(ctx, s.registryPath()+".lock", true)
	if err != nil {
		return err
	}
	defer unlock()

	reg, err := s.readRegistry()
	if err != nil {
		return err
	}
	fn(reg)

	b, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(s.root, tmpDir, "registry-"+uuid.NewString()+".json")
	if err := writeFileSync(tmp, b); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot write registry: %w", err)
	}
	if err := os.Rename(tmp, s.registryPath()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("cannot install registry: %w", err)
	}
	return nil
}
