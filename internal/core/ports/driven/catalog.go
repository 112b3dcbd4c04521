package driven

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// DocumentCatalog is the relational lookup between platform documents
// and their store ids.
type DocumentCatalog interface {
	// RegisterDocument creates or updates a document reference.
	RegisterDocument(ctx context.Context, ref domain.DocumentRef) error

	// Resolve returns the refs for the given document ids within a course.
	// Documents without a store id, or outside the course, are omitted.
	Resolve(ctx context.Context, courseID int64, documentIDs []int64) ([]domain.DocumentRef, error)

	// Documents lists every document of a course, indexed or not.
	Documents(ctx context.Context, courseID int64) ([]domain.DocumentRef, error)

	// RemoveDocument deletes a document reference.
	RemoveDocument(ctx context.Context, documentID int64) error
}
