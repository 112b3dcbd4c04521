package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Saved indices are deep-copied so callers cannot mutate stored state.
type IndexStore struct {
	mu      sync.RWMutex
	indices map[string]*domain.DocumentIndex
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{
		indices: make(map[string]*domain.DocumentIndex),
	}
}

// Save stores or replaces an index.
func (s *IndexStore) Save(_ context.Context, idx *domain.DocumentIndex) error {
	if idx == nil || idx.StoreID == "" {
		return fmt.Errorf("%w: missing store id", domain.ErrInvalidInput)
	}
	if !idx.Consistent() {
		return fmt.Errorf("inconsistent index: %d chunks, %d vectors", len(idx.Chunks), len(idx.Vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[idx.StoreID] = cloneIndex(idx)
	return nil
}

// Load retrieves an index by store id.
func (s *IndexStore) Load(_ context.Context, storeID string) (*domain.DocumentIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indices[storeID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneIndex(idx), nil
}

// Delete removes an index.
func (s *IndexStore) Delete(_ context.Context, storeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.indices, storeID)
	return nil
}

// StoreIDs returns the store ids of a course, sorted.
func (s *IndexStore) StoreIDs(_ context.Context, courseID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, idx := range s.indices {
		if idx.CourseID == courseID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Courses returns the course ids with at least one index, ascending.
func (s *IndexStore) Courses(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []int64
	for _, idx := range s.indices {
		if !slices.Contains(out, idx.CourseID) {
			out = append(out, idx.CourseID)
		}
	}
	slices.Sort(out)
	return out, nil
}

func cloneIndex(idx *domain.DocumentIndex) *domain.DocumentIndex {
	c := *idx
	c.Chunks = slices.Clone(idx.Chunks)
	c.Vectors = make([][]float32, len(idx.Vectors))
	for i, v := range idx.Vectors {
		c.Vectors[i] = slices.Clone(v)
	}
	return &c
}
