package services

import (
	"context"
	"sort"
	"sync"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService fans a query out across the indices of a course and
// merges the per-index hits into one ranking.
type RetrievalService struct {
	index    *IndexService
	embedder driven.EmbeddingService
	registry driven.IndexStore
	catalog  driven.DocumentCatalog
}

// NewRetrievalService creates a new retrieval service.
// embedder may be nil, in which case every retrieval is empty.
func NewRetrievalService(
	index *IndexService,
	embedder driven.EmbeddingService,
	registry driven.IndexStore,
	catalog driven.DocumentCatalog,
) *RetrievalService {
	return &RetrievalService{
		index:    index,
		embedder: embedder,
		registry: registry,
		catalog:  catalog,
	}
}

// Retrieve returns the best passages of a course for query.
func (s *RetrievalService) Retrieve(
	ctx context.Context,
	courseID int64,
	query string,
	opts domain.RetrievalOptions,
) []domain.RetrievalResult {
	defer logger.Timed("retrieve")()
	k := opts.Limit()

	storeIDs := s.candidateStores(ctx, courseID, opts)
	if len(storeIDs) == 0 {
		logger.Debug("No indices for course %d", courseID)
		return nil
	}

	if s.embedder == nil {
		logger.Warn("Retrieval skipped: %v", domain.ErrEmbeddingUnavailable)
		return nil
	}
	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil || len(queryVec) == 0 {
		logger.Warn("Query embedding failed: %v", err)
		return nil
	}

	// Each index writes to its own slot so the merge order stays deterministic.
	perStore := make([][]domain.ChunkMatch, len(storeIDs))
	var wg sync.WaitGroup
	for i, id := range storeIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			matches, err := s.index.Search(ctx, id, queryVec, k)
			if err != nil {
				logger.Debug("Skipping %s: %v", id, err)
				return
			}
			perStore[i] = matches
		}(i, id)
	}
	wg.Wait()

	var results []domain.RetrievalResult
	for _, matches := range perStore {
		for _, m := range matches {
			results = append(results, m.Result())
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}

	logger.Debug("Retrieved %d passages from %d indices", len(results), len(storeIDs))
	return results
}

// RetrieveWithFallback retries once without the document filter when the
// filtered call finds nothing.
func (s *RetrievalService) RetrieveWithFallback(
	ctx context.Context,
	courseID int64,
	query string,
	opts domain.RetrievalOptions,
) []domain.RetrievalResult {
	results := s.Retrieve(ctx, courseID, query, opts)
	if len(results) > 0 || !opts.Filtered() {
		return results
	}
	logger.Info("No passages in selected documents, retrying across course %d", courseID)
	opts.AllowedDocumentIDs = nil
	return s.Retrieve(ctx, courseID, query, opts)
}

// candidateStores lists the store ids to search, honouring the document filter.
func (s *RetrievalService) candidateStores(ctx context.Context, courseID int64, opts domain.RetrievalOptions) []string {
	ids, err := s.registry.StoreIDs(ctx, courseID)
	if err != nil {
		logger.Warn("List indices for course %d: %v", courseID, err)
		return nil
	}
	if !opts.Filtered() {
		return ids
	}
	if s.catalog == nil {
		return nil
	}

	refs, err := s.catalog.Resolve(ctx, courseID, opts.AllowedDocumentIDs)
	if err != nil {
		logger.Warn("Resolve documents for course %d: %v", courseID, err)
		return nil
	}
	allowed := make(map[string]bool, len(refs))
	for _, ref := range refs {
		allowed[ref.StoreID] = true
	}

	var filtered []string
	for _, id := range ids {
		if allowed[id] {
			filtered = append(filtered, id)
		}
	}
	return filtered
}
