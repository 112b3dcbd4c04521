package driving

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// IngestService builds and removes per-document indices.
//
// Ingestion is best-effort from the platform's point of view: a failed build
// leaves the document without an index, and the caller decides whether to
// surface the *domain.IngestError or ignore it.
type IngestService interface {
	// Ingest chunks, embeds and persists a document, returning its store id.
	// Failures are reported as *domain.IngestError.
	Ingest(ctx context.Context, req domain.IngestRequest) (string, error)

	// IngestFile extracts text from a file on disk and ingests it.
	IngestFile(ctx context.Context, courseID, documentID int64, title, path string) (string, error)

	// Remove deletes the index of a document and forgets its store id.
	Remove(ctx context.Context, storeID string) error

	// Indices lists the store ids registered for a course.
	Indices(ctx context.Context, courseID int64) ([]string, error)

	// Inspect loads an index for display.
	// Returns domain.ErrNotFound when nothing usable is stored.
	Inspect(ctx context.Context, storeID string) (*domain.DocumentIndex, error)
}
