// Package mcp provides an MCP (Model Context Protocol) server adapter for the engine.
// It lets AI assistants retrieve course passages, ask grounded questions,
// moderate text and generate quizzes.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
