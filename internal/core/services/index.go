package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IngestService = (*IndexService)(nil)

// IndexService builds, loads and searches per-document indices.
//
// Builds and loads of the same store id are serialised through a per-store
// lock; different store ids never contend.
type IndexService struct {
	chunker    driven.Chunker
	embedder   driven.EmbeddingService
	store      driven.IndexStore
	vectors    driven.VectorIndexFactory
	catalog    driven.DocumentCatalog
	extractors driven.ExtractorRegistry
	locks      *keyedLock
	now        func() time.Time
}

// NewIndexService creates a new index service.
// embedder may be nil, in which case every build fails with
// domain.ErrEmbeddingUnavailable. catalog may be nil, in which case document
// references are not recorded.
func NewIndexService(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	vectors driven.VectorIndexFactory,
	catalog driven.DocumentCatalog,
) *IndexService {
	return &IndexService{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		vectors:  vectors,
		catalog:  catalog,
		locks:    newKeyedLock(),
		now:      time.Now,
	}
}

// SetExtractors enables IngestFile.
func (s *IndexService) SetExtractors(r driven.ExtractorRegistry) {
	s.extractors = r
}

// BuildMeta describes the document an index is built for.
type BuildMeta struct {
	CourseID   int64
	DocumentID int64
	Title      string
}

// Ingest builds the index for a document and records its store id.
// The document reference is registered before the build, so a failed build
// leaves a known document without an index.
func (s *IndexService) Ingest(ctx context.Context, req domain.IngestRequest) (string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return "", fmt.Errorf("%w: document title is required", domain.ErrInvalidInput)
	}
	storeID := domain.StoreIDFor(req.CourseID, req.Title)
	logger.Section("Ingest")
	logger.Debug("Course %d document %d -> %s (%d bytes)", req.CourseID, req.DocumentID, storeID, len(req.Text))

	ref := domain.DocumentRef{DocumentID: req.DocumentID, CourseID: req.CourseID, Title: req.Title}
	if err := s.register(ctx, ref); err != nil {
		return "", err
	}

	idx, err := s.Build(ctx, req.Text, storeID, BuildMeta{
		CourseID:   req.CourseID,
		DocumentID: req.DocumentID,
		Title:      req.Title,
	})
	if err != nil {
		logger.Warn("Ingest %s failed: %v", storeID, err)
		return "", err
	}

	ref.StoreID = idx.StoreID
	if err := s.register(ctx, ref); err != nil {
		return "", err
	}
	logger.Info("Indexed %s: %d chunks, dim %d", storeID, len(idx.Chunks), idx.Dimension)
	return storeID, nil
}

func (s *IndexService) register(ctx context.Context, ref domain.DocumentRef) error {
	if s.catalog == nil || ref.DocumentID == 0 {
		return nil
	}
	if err := s.catalog.RegisterDocument(ctx, ref); err != nil {
		return fmt.Errorf("register document %d: %w", ref.DocumentID, err)
	}
	return nil
}

// IngestFile extracts text from path and ingests it.
// Extraction failures are reported as domain.ErrNoExtractableText.
func (s *IndexService) IngestFile(ctx context.Context, courseID, documentID int64, title, path string) (string, error) {
	if s.extractors == nil {
		return "", fmt.Errorf("%w: no text extractors configured", domain.ErrUnsupportedType)
	}
	text, err := s.extractors.Extract(ctx, path)
	if err != nil {
		storeID := domain.StoreIDFor(courseID, title)
		return "", &domain.IngestError{StoreID: storeID, Err: fmt.Errorf("%w: %w", domain.ErrNoExtractableText, err)}
	}
	return s.Ingest(ctx, domain.IngestRequest{
		CourseID:   courseID,
		DocumentID: documentID,
		Title:      title,
		Text:       text,
	})
}

// Build chunks and embeds text, then persists the index under storeID.
// Chunks whose embedding fails are dropped; the build fails only when no
// chunk could be embedded. Errors are *domain.IngestError.
func (s *IndexService) Build(ctx context.Context, text, storeID string, meta BuildMeta) (*domain.DocumentIndex, error) {
	unlock := s.locks.Lock(storeID)
	defer unlock()

	fail := func(err error) (*domain.DocumentIndex, error) {
		return nil, &domain.IngestError{StoreID: storeID, Err: err}
	}

	if s.embedder == nil {
		for range s.chunker.Chunks(text) {
			return fail(domain.ErrEmbeddingUnavailable)
		}
		return fail(domain.ErrNoExtractableText)
	}

	idx := &domain.DocumentIndex{
		StoreID:       storeID,
		CourseID:      meta.CourseID,
		DocumentID:    meta.DocumentID,
		DocumentTitle: meta.Title,
		ModelID:       s.embedder.ModelName(),
		CreatedAt:     s.now(),
	}

	total, failed := 0, 0
	for chunk := range s.chunker.Chunks(text) {
		total++
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err))
		}

		vec, err := s.embedder.Embed(ctx, chunk.Text)
		if err != nil || len(vec) == 0 {
			failed++
			logger.Debug("Chunk %d of %s not embedded: %v", chunk.Ordinal, storeID, err)
			continue
		}
		if idx.Dimension == 0 {
			idx.Dimension = len(vec)
		}
		if len(vec) != idx.Dimension {
			failed++
			logger.Warn("Chunk %d of %s has dimension %d, want %d", chunk.Ordinal, storeID, len(vec), idx.Dimension)
			continue
		}
		idx.Chunks = append(idx.Chunks, chunk)
		idx.Vectors = append(idx.Vectors, vec)
	}

	if total == 0 {
		return fail(domain.ErrNoExtractableText)
	}
	if len(idx.Chunks) == 0 {
		return fail(domain.ErrEmbeddingUnavailable)
	}
	if failed > 0 {
		logger.Warn("Dropped %d of %d chunks of %s", failed, total, storeID)
	}

	if err := s.store.Save(ctx, idx); err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err))
	}
	return idx, nil
}

// Load returns the stored index, or false when there is none.
// Unreadable indices are treated as missing.
func (s *IndexService) Load(ctx context.Context, storeID string) (*domain.DocumentIndex, bool) {
	unlock := s.locks.RLock(storeID)
	defer unlock()

	idx, err := s.store.Load(ctx, storeID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("Load %s: %v", storeID, err)
		}
		return nil, false
	}
	return idx, true
}

// Search returns the k nearest chunks of one index to the query vector.
// Returns domain.ErrNotFound when the store has no usable index.
func (s *IndexService) Search(ctx context.Context, storeID string, query []float32, k int) ([]domain.ChunkMatch, error) {
	idx, ok := s.Load(ctx, storeID)
	if !ok {
		return nil, fmt.Errorf("index %s: %w", storeID, domain.ErrNotFound)
	}

	vi, err := s.vectors.Build(idx.Dimension, idx.Vectors)
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", storeID, err)
	}
	hits, err := vi.Search(ctx, query, min(k, len(idx.Chunks)))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", storeID, err)
	}

	matches := make([]domain.ChunkMatch, 0, len(hits))
	for _, h := range hits {
		if h.Position < 0 || h.Position >= len(idx.Chunks) {
			continue
		}
		matches = append(matches, domain.ChunkMatch{
			StoreID:       storeID,
			DocumentTitle: idx.DocumentTitle,
			CourseID:      idx.CourseID,
			Chunk:         idx.Chunks[h.Position],
			Distance:      h.Distance,
		})
	}
	return matches, nil
}

// Remove deletes an index. The owning document stays in the catalog
// without a store id.
func (s *IndexService) Remove(ctx context.Context, storeID string) error {
	idx, found := s.Load(ctx, storeID)

	unlock := s.locks.Lock(storeID)
	defer unlock()

	if err := s.store.Delete(ctx, storeID); err != nil {
		return fmt.Errorf("remove %s: %w", storeID, err)
	}
	if found && idx.DocumentID != 0 {
		return s.register(ctx, domain.DocumentRef{
			DocumentID: idx.DocumentID,
			CourseID:   idx.CourseID,
			Title:      idx.DocumentTitle,
		})
	}
	return nil
}

// Indices lists the store ids registered for a course.
func (s *IndexService) Indices(ctx context.Context, courseID int64) ([]string, error) {
	return s.store.StoreIDs(ctx, courseID)
}

// Inspect loads an index for display.
func (s *IndexService) Inspect(ctx context.Context, storeID string) (*domain.DocumentIndex, error) {
	idx, ok := s.Load(ctx, storeID)
	if !ok {
		return nil, fmt.Errorf("index %s: %w", storeID, domain.ErrNotFound)
	}
	return idx, nil
}
