package domain

import (
	"fmt"
	"strings"
	"time"
)

// Chunk represents a window of document text.
// Chunks are immutable once produced by the chunker.
type Chunk struct {
	// Text is the content of this window.
	Text string `json:"text"`

	// Ordinal is the position within the document.
	// It is kept for citation and debugging, never for ranking.
	Ordinal int `json:"ordinal"`
}

// DocumentIndex is the searchable state of a single document.
// Vectors[i] is the embedding of Chunks[i]; both slices always have the same length.
type DocumentIndex struct {
	// StoreID identifies the index. See StoreIDFor.
	StoreID string

	// CourseID is the course owning the document.
	CourseID int64

	// DocumentID is the relational identifier of the document (0 when unknown).
	DocumentID int64

	// DocumentTitle is the human-readable title used in citations.
	DocumentTitle string

	// ModelID names the embedding model that produced the vectors.
	ModelID string

	// Dimension is the length of every vector.
	Dimension int

	// Chunks are the chunk texts that survived embedding, in document order.
	Chunks []Chunk

	// Vectors are the chunk embeddings, parallel to Chunks.
	Vectors [][]float32

	// CreatedAt is when the index was built.
	CreatedAt time.Time
}

// Consistent reports whether the chunk/vector invariant holds.
func (d *DocumentIndex) Consistent() bool {
	if d == nil || len(d.Chunks) != len(d.Vectors) {
		return false
	}
	for _, v := range d.Vectors {
		if len(v) != d.Dimension {
			return false
		}
	}
	return true
}

// DocumentRef links a relational document to its index.
type DocumentRef struct {
	// DocumentID is the relational identifier.
	DocumentID int64

	// CourseID is the owning course.
	CourseID int64

	// Title is the document title.
	Title string

	// StoreID is empty when the document has no index yet.
	StoreID string
}

// StoreIDFor derives the opaque store identifier of a document.
func StoreIDFor(courseID int64, title string) string {
	return fmt.Sprintf("course_%d_%s", courseID, strings.ReplaceAll(strings.TrimSpace(title), " ", "_"))
}

// IngestRequest describes a document to index.
type IngestRequest struct {
	CourseID   int64
	DocumentID int64
	Title      string
	Text       string
}
