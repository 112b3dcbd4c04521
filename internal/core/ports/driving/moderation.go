package driving

import (
	"context"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// ModerationService classifies text against the policy categories.
type ModerationService interface {
	// Moderate returns the verdict for text under the given policy. It never fails.
	Moderate(ctx context.Context, text string, policy domain.ModerationPolicy) domain.ModerationVerdict

	// ModerateBatch moderates each text independently, preserving order.
	ModerateBatch(ctx context.Context, texts []string, policy domain.ModerationPolicy) []domain.ModerationVerdict

	// Summarise aggregates verdicts.
	Summarise(verdicts []domain.ModerationVerdict) domain.ModerationSummary

	// Audit records a verdict with the action taken. It is a no-op without a log.
	Audit(ctx context.Context, text string, verdict domain.ModerationVerdict, action domain.ModerationAction, metadata map[string]string) error
}
