package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for engine resources.
	uriScheme = "learnly://"
)

// registerResources registers the index resources when ingestion is available.
func (s *Server) registerResources() {
	if s.ports.Ingest == nil {
		return
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "courses/{courseId}/indices",
		Name:        "course-indices",
		Description: "Store ids of the documents indexed for a course",
		MIMEType:    "application/json",
	}, s.handleCourseIndicesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "indices/{storeId}",
		Name:        "index-summary",
		Description: "Title, model and chunk count of a document index",
		MIMEType:    "application/json",
	}, s.handleIndexResource)
}

// handleCourseIndicesResource lists the store ids of a course.
func (s *Server) handleCourseIndicesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	courseID, ok := extractCourseID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	ids, err := s.ports.Ingest.Indices(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing indices: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}

	return jsonResource(req.Params.URI, ids)
}

// indexSummary is the JSON shape of the index-summary resource.
type indexSummary struct {
	StoreID    string `json:"store_id"`
	CourseID   int64  `json:"course_id"`
	DocumentID int64  `json:"document_id,omitempty"`
	Title      string `json:"title"`
	Model      string `json:"model"`
	Dimension  int    `json:"dimension"`
	Chunks     int    `json:"chunks"`
	CreatedAt  string `json:"created_at"`
}

// handleIndexResource summarises one document index.
func (s *Server) handleIndexResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	storeID := extractStoreID(req.Params.URI)
	if storeID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	idx, err := s.ports.Ingest.Inspect(ctx, storeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("inspecting index: %w", err)
	}

	return jsonResource(req.Params.URI, indexSummary{
		StoreID:    idx.StoreID,
		CourseID:   idx.CourseID,
		DocumentID: idx.DocumentID,
		Title:      idx.DocumentTitle,
		Model:      idx.ModelID,
		Dimension:  idx.Dimension,
		Chunks:     len(idx.Chunks),
		CreatedAt:  idx.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractCourseID extracts the course ID from a URI like learnly://courses/{courseId}/indices.
func extractCourseID(uri string) (int64, bool) {
	const prefix = uriScheme + "courses/"
	const suffix = "/indices"

	if !strings.HasPrefix(uri, prefix) || !strings.HasSuffix(uri, suffix) {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(uri, prefix), suffix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// extractStoreID extracts the store ID from a URI like learnly://indices/{storeId}.
func extractStoreID(uri string) string {
	const prefix = uriScheme + "indices/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
