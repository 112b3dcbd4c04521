package driven

import (
	"iter"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// Chunker splits extracted text into overlapping windows.
type Chunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunks returns a lazy sequence over the windows of text.
	// The sequence may be ranged over more than once.
	Chunks(text string) iter.Seq[domain.Chunk]
}
