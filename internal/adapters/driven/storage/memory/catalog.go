package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// Ensure DocumentCatalog implements the interface.
var _ driven.DocumentCatalog = (*DocumentCatalog)(nil)

// DocumentCatalog is an in-memory implementation of driven.DocumentCatalog.
type DocumentCatalog struct {
	mu   sync.RWMutex
	docs map[int64]domain.DocumentRef
}

// NewDocumentCatalog creates a new in-memory document catalog.
func NewDocumentCatalog() *DocumentCatalog {
	return &DocumentCatalog{
		docs: make(map[int64]domain.DocumentRef),
	}
}

// RegisterDocument stores or updates a document reference.
func (c *DocumentCatalog) RegisterDocument(_ context.Context, ref domain.DocumentRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[ref.DocumentID] = ref
	return nil
}

// Resolve returns indexed documents of the course among documentIDs.
func (c *DocumentCatalog) Resolve(_ context.Context, courseID int64, documentIDs []int64) ([]domain.DocumentRef, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.DocumentRef
	seen := make(map[int64]bool, len(documentIDs))
	for _, id := range documentIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		ref, ok := c.docs[id]
		if !ok || ref.CourseID != courseID || ref.StoreID == "" {
			continue
		}
		out = append(out, ref)
	}
	return out, nil
}

// Documents lists the documents of a course ordered by id.
func (c *DocumentCatalog) Documents(_ context.Context, courseID int64) ([]domain.DocumentRef, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []domain.DocumentRef
	for _, ref := range c.docs {
		if ref.CourseID == courseID {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out, nil
}

// RemoveDocument deletes a document reference.
func (c *DocumentCatalog) RemoveDocument(_ context.Context, documentID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, documentID)
	return nil
}
