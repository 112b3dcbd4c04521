package domain

// DefaultTopK is the number of passages retrieved for answering.
const DefaultTopK = 3

// SourceRef identifies where a retrieved passage came from.
type SourceRef struct {
	DocumentTitle string `json:"document_title"`
	CourseID      int64  `json:"course_id"`
}

// RetrievalResult is a single ranked passage.
// Results are produced per query and never persisted.
type RetrievalResult struct {
	// Content is the chunk text.
	Content string `json:"content"`

	// Score is 1/(1+distance); higher is more relevant, bounded in (0,1].
	Score float64 `json:"score"`

	// Source is the document the passage belongs to.
	Source SourceRef `json:"source"`
}

// RetrievalOptions configures a retrieval call.
type RetrievalOptions struct {
	// K is the number of results to return. Zero means DefaultTopK.
	K int

	// AllowedDocumentIDs restricts retrieval to these documents when non-nil.
	AllowedDocumentIDs []int64
}

// Limit returns the effective K.
func (o RetrievalOptions) Limit() int {
	if o.K <= 0 {
		return DefaultTopK
	}
	return o.K
}

// Filtered reports whether a document filter was requested.
func (o RetrievalOptions) Filtered() bool {
	return len(o.AllowedDocumentIDs) > 0
}

// SimilarityFromDistance converts a raw L2 distance into a score.
func SimilarityFromDistance(d float64) float64 {
	if d < 0 {
		d = 0
	}
	return 1 / (1 + d)
}

// ChunkMatch is a raw nearest-neighbour hit within one document index.
type ChunkMatch struct {
	StoreID       string
	DocumentTitle string
	CourseID      int64
	Chunk         Chunk
	Distance      float64
}

// Result converts the match into a scored retrieval result.
func (m ChunkMatch) Result() RetrievalResult {
	return RetrievalResult{
		Content: m.Chunk.Text,
		Score:   SimilarityFromDistance(m.Distance),
		Source: SourceRef{
			DocumentTitle: m.DocumentTitle,
			CourseID:      m.CourseID,
		},
	}
}
