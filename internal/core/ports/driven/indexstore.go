package driven

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// IndexStore persists document indices and the course registry.
//
// Save must be all-or-nothing: a crash mid-write never leaves a loadable
// index whose chunk count differs from its vector count. Implementations
// that are shared between processes must also exclude concurrent writers
// for the same store id.
type IndexStore interface {
	// Save persists the index under idx.StoreID, replacing any previous one,
	// and records it in the registry for idx.CourseID.
	Save(ctx context.Context, idx *domain.DocumentIndex) error

	// Load returns the persisted index.
	// Returns domain.ErrNotFound when nothing usable is stored.
	Load(ctx context.Context, storeID string) (*domain.DocumentIndex, error)

	// Delete removes the index and its registry entry.
	// Deleting an unknown store id is not an error.
	Delete(ctx context.Context, storeID string) error

	// StoreIDs returns the store ids registered for a course, sorted.
	StoreIDs(ctx context.Context, courseID int64) ([]string, error)

	// Courses returns every course id with at least one registered index.
	Courses(ctx context.Context) ([]int64, error)
}
