package driving

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// AnswerService answers course questions from retrieved material.
type AnswerService interface {
	// Answer moderates the query, retrieves context, generates an answer and
	// moderates the result. Refusals and missing material are reported in the
	// response, not as errors. Errors are returned only when generation fails.
	Answer(ctx context.Context, req domain.AnswerRequest, policy domain.ModerationPolicy) (*domain.AnswerResponse, error)
}
