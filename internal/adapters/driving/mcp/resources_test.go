package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

func TestExtractCourseID(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		wantID int64
		wantOK bool
	}{
		{"valid course URI", "learnly://courses/42/indices", 42, true},
		{"invalid prefix", "file://courses/42/indices", 0, false},
		{"missing suffix", "learnly://courses/42", 0, false},
		{"non numeric id", "learnly://courses/abc/indices", 0, false},
		{"empty URI", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := extractCourseID(tt.uri)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestExtractStoreID(t *testing.T) {
	assert.Equal(t, "course_1_Cells", extractStoreID("learnly://indices/course_1_Cells"))
	assert.Equal(t, "", extractStoreID("learnly://courses/1/indices"))
	assert.Equal(t, "", extractStoreID(""))
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleCourseIndicesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists store ids", func(t *testing.T) {
		ingest := &mockIngestService{indices: []string{"course_1_A", "course_1_B"}}
		server := newTestServer(t, &Ports{Ingest: ingest})

		result, err := server.handleCourseIndicesResource(ctx, readRequest("learnly://courses/1/indices"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		var ids []string
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &ids))
		assert.Equal(t, []string{"course_1_A", "course_1_B"}, ids)
	})

	t.Run("empty course is an empty array", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{}})

		result, err := server.handleCourseIndicesResource(ctx, readRequest("learnly://courses/9/indices"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("bad URI is not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{}})

		_, err := server.handleCourseIndicesResource(ctx, readRequest("learnly://courses/x/indices"))

		assert.Error(t, err)
	})

	t.Run("propagates errors", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{err: errors.New("disk gone")}})

		_, err := server.handleCourseIndicesResource(ctx, readRequest("learnly://courses/1/indices"))

		assert.ErrorContains(t, err, "disk gone")
	})
}

func TestServer_handleIndexResource(t *testing.T) {
	ctx := context.Background()

	t.Run("summarises index", func(t *testing.T) {
		ingest := &mockIngestService{index: &domain.DocumentIndex{
			StoreID:       "course_1_Cells",
			CourseID:      1,
			DocumentTitle: "Cells",
			ModelID:       "nomic-embed-text",
			Dimension:     3,
			Chunks:        []domain.Chunk{{Text: "a"}, {Text: "b", Ordinal: 1}},
			Vectors:       [][]float32{{1, 0, 0}, {0, 1, 0}},
			CreatedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}}
		server := newTestServer(t, &Ports{Ingest: ingest})

		result, err := server.handleIndexResource(ctx, readRequest("learnly://indices/course_1_Cells"))

		require.NoError(t, err)
		var summary indexSummary
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &summary))
		assert.Equal(t, "Cells", summary.Title)
		assert.Equal(t, 2, summary.Chunks)
		assert.Equal(t, "2026-01-02T03:04:05Z", summary.CreatedAt)
	})

	t.Run("missing index is not found", func(t *testing.T) {
		server := newTestServer(t, &Ports{Ingest: &mockIngestService{err: domain.ErrNotFound}})

		_, err := server.handleIndexResource(ctx, readRequest("learnly://indices/course_1_Gone"))

		assert.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrNotFound))
	})
}
