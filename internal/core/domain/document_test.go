package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreIDFor(t *testing.T) {
	tests := []struct {
		name     string
		courseID int64
		title    string
		want     string
	}{
		{"simple", 3, "Intro", "course_3_Intro"},
		{"spaces", 12, "Week 1 Notes", "course_12_Week_1_Notes"},
		{"padded", 1, "  Syllabus  ", "course_1_Syllabus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StoreIDFor(tt.courseID, tt.title))
		})
	}
}

func TestDocumentIndex_Consistent(t *testing.T) {
	idx := &DocumentIndex{
		Dimension: 2,
		Chunks:    []Chunk{{Text: "a"}, {Text: "b", Ordinal: 1}},
		Vectors:   [][]float32{{1, 0}, {0, 1}},
	}
	assert.True(t, idx.Consistent())

	idx.Vectors = idx.Vectors[:1]
	assert.False(t, idx.Consistent())

	idx.Vectors = [][]float32{{1, 0}, {0, 1, 2}}
	assert.False(t, idx.Consistent())

	var nilIdx *DocumentIndex
	assert.False(t, nilIdx.Consistent())
}

func TestRetrievalOptions_Limit(t *testing.T) {
	assert.Equal(t, DefaultTopK, RetrievalOptions{}.Limit())
	assert.Equal(t, 5, RetrievalOptions{K: 5}.Limit())
	assert.False(t, RetrievalOptions{}.Filtered())
	assert.True(t, RetrievalOptions{AllowedDocumentIDs: []int64{1}}.Filtered())
}

func TestSimilarityFromDistance(t *testing.T) {
	assert.InDelta(t, 1.0, SimilarityFromDistance(0), 1e-9)
	assert.InDelta(t, 0.5, SimilarityFromDistance(1), 1e-9)
	assert.InDelta(t, 1.0, SimilarityFromDistance(-0.1), 1e-9)
	assert.Greater(t, SimilarityFromDistance(0.2), SimilarityFromDistance(0.3))
}

func TestChunkMatch_Result(t *testing.T) {
	m := ChunkMatch{
		StoreID:       "course_2_Notes",
		DocumentTitle: "Notes",
		CourseID:      2,
		Chunk:         Chunk{Text: "passage", Ordinal: 4},
		Distance:      3,
	}

	r := m.Result()
	assert.Equal(t, "passage", r.Content)
	assert.InDelta(t, 0.25, r.Score, 1e-9)
	assert.Equal(t, SourceRef{DocumentTitle: "Notes", CourseID: 2}, r.Source)
}
