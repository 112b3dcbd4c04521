// Package flat provides an exhaustive nearest-neighbour index over float32 vectors.
//
// Distances are squared Euclidean (L2) distances. Documents are indexed one at
// a time and hold at most a few thousand chunks, so a linear scan stays cheap
// and results are exact.
package flat

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// ErrDimensionMismatch is returned when a vector has the wrong length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Verify interface compliance.
var (
	_ driven.VectorIndex        = (*Index)(nil)
	_ driven.VectorIndexFactory = Factory{}
)

// Index is an immutable flat L2 index.
type Index struct {
	dim     int
	vectors [][]float32
}

// New builds an index over vectors. The slice is retained, not copied.
func New(dim int, vectors [][]float32) (*Index, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid dimension %d", dim)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d: %w: got %d, want %d", i, ErrDimensionMismatch, len(v), dim)
		}
	}
	return &Index{dim: dim, vectors: vectors}, nil
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return len(x.vectors) }

// Dimension returns the vector size.
func (x *Index) Dimension() int { return x.dim }

// Search returns the k closest vectors, nearest first.
// Ties are broken by position so results are deterministic.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != x.dim {
		return nil, fmt.Errorf("query: %w: got %d, want %d", ErrDimensionMismatch, len(query), x.dim)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k = min(k, len(x.vectors))
	if k <= 0 {
		return nil, nil
	}

	hits := make([]driven.VectorHit, len(x.vectors))
	for i, v := range x.vectors {
		hits[i] = driven.VectorHit{Position: i, Distance: SquaredL2(v, query)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits[:k], nil
}

// SquaredL2 returns the squared Euclidean distance between equal-length vectors.
func SquaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// Factory builds flat indices.
type Factory struct{}

// Build implements driven.VectorIndexFactory.
func (Factory) Build(dim int, vectors [][]float32) (driven.VectorIndex, error) {
	return New(dim, vectors)
}
