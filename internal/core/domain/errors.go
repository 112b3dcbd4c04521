package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the text-generation provider is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates embeddings could not be produced.
	// During ingestion it means every chunk failed to embed.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Ingestion Errors.

	// ErrNoExtractableText indicates chunking produced nothing to index.
	ErrNoExtractableText = errors.New("no extractable text")

	// ErrPersistenceFailure indicates the index could not be written atomically.
	ErrPersistenceFailure = errors.New("index persistence failed")

	// Quiz Errors.

	// ErrNoMaterial indicates retrieval found nothing to ground a quiz on.
	ErrNoMaterial = errors.New("no course material found to generate quiz")

	// ErrMalformedResponse indicates the provider output could not be parsed into questions.
	ErrMalformedResponse = errors.New("malformed quiz response")

	// ErrProviderUnavailable indicates the generation provider returned nothing.
	ErrProviderUnavailable = errors.New("generation provider unavailable")
)

// IngestError reports a failed index build for a store.
// Err is one of ErrNoExtractableText, ErrEmbeddingUnavailable or ErrPersistenceFailure,
// possibly wrapping a lower-level cause.
type IngestError struct {
	StoreID string
	Err     error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.StoreID, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// MalformedResponseError carries the reason a quiz response was rejected.
type MalformedResponseError struct {
	Detail string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Detail)
}

func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}
