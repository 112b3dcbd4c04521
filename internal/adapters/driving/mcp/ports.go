package mcp

import (
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval ranks course passages. Required.
	Retrieval driving.RetrievalService

	// Answer synthesises grounded answers. The ask tool is omitted when nil.
	Answer driving.AnswerService

	// Moderation classifies text. The moderate tool is omitted when nil.
	Moderation driving.ModerationService

	// Quiz generates questions. The generate_quiz tool is omitted when nil.
	Quiz driving.QuizService

	// Ingest lists and inspects indices for the index resources.
	Ingest driving.IngestService

	// Policy is the moderation policy applied by ask and moderate.
	Policy domain.ModerationPolicy
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
