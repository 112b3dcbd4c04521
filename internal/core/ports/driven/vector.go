package driven

import "context"

// VectorIndex is a read-only nearest-neighbour structure over one document's
// chunk embeddings. Positions are chunk ordinals within the stored index.
type VectorIndex interface {
	// Search finds the k nearest neighbours to the query vector, closest first.
	// k is clamped to Len().
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of indexed vectors.
	Len() int

	// Dimension returns the vector size.
	Dimension() int
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Position is the index of the matched vector.
	Position int

	// Distance is the raw L2 distance to the query. Lower is closer.
	Distance float64
}

// VectorIndexFactory builds a VectorIndex over stored vectors.
type VectorIndexFactory interface {
	// Build returns an index over vectors, each of length dim.
	Build(dim int, vectors [][]float32) (VectorIndex, error)
}
