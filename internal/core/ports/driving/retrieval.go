package driving

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// RetrievalService ranks course passages against a query.
type RetrievalService interface {
	// Retrieve returns at most opts.Limit() passages, highest score first.
	// It never fails: missing indices and provider errors yield an empty slice.
	Retrieve(ctx context.Context, courseID int64, query string, opts domain.RetrievalOptions) []domain.RetrievalResult

	// RetrieveWithFallback behaves like Retrieve, but when a document filter
	// yields nothing it retries once without the filter.
	RetrieveWithFallback(ctx context.Context, courseID int64, query string, opts domain.RetrievalOptions) []domain.RetrievalResult
}
