package domain

import "time"

// DefaultModerationThreshold is the confidence at which a category is flagged
// when no override is configured.
const DefaultModerationThreshold = 0.7

// ModerationCategory is a policy category checked by the moderation gate.
type ModerationCategory string

// Policy categories, in evaluation order.
const (
	CategoryNone       ModerationCategory = "none"
	CategoryHate       ModerationCategory = "hate"
	CategoryViolence   ModerationCategory = "violence"
	CategoryWeapons    ModerationCategory = "weapons"
	CategoryReligion   ModerationCategory = "religion"
	CategorySafety     ModerationCategory = "safety"
	CategoryHealth     ModerationCategory = "health"
	CategoryHarassment ModerationCategory = "harassment"
	CategorySexual     ModerationCategory = "sexual"
)

// AllModerationCategories returns the policy categories in evaluation order.
// CategoryNone is not a policy category and is excluded.
func AllModerationCategories() []ModerationCategory {
	return []ModerationCategory{
		CategoryHate,
		CategoryViolence,
		CategoryWeapons,
		CategoryReligion,
		CategorySafety,
		CategoryHealth,
		CategoryHarassment,
		CategorySexual,
	}
}

// IsValid returns true if the category is recognised.
func (c ModerationCategory) IsValid() bool {
	if c == CategoryNone {
		return true
	}
	for _, known := range AllModerationCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (c ModerationCategory) String() string {
	return string(c)
}

// ModerationVerdict is the outcome of running text through the gate.
type ModerationVerdict struct {
	// Passed is true when no category was flagged.
	Passed bool `json:"passed"`

	// Category is the highest-confidence flagged category, or CategoryNone.
	// Several categories may be flagged; only the top one is reported here.
	Category ModerationCategory `json:"category"`

	// Confidence is the highest confidence seen across all categories, in [0,1].
	Confidence float64 `json:"confidence"`

	// Warnings lists one message per flagged category, in evaluation order.
	Warnings []string `json:"warnings"`
}

// ModerationPolicy carries the thresholds used by a moderation call.
// It is passed explicitly to every call; there is no process-wide state.
type ModerationPolicy struct {
	// DefaultThreshold applies to categories without an override.
	// Zero means DefaultModerationThreshold.
	DefaultThreshold float64

	// Overrides sets per-category thresholds.
	Overrides map[ModerationCategory]float64

	// Disabled skips categories entirely.
	Disabled map[ModerationCategory]bool
}

// DefaultModerationPolicy returns a policy using DefaultModerationThreshold everywhere.
func DefaultModerationPolicy() ModerationPolicy {
	return ModerationPolicy{DefaultThreshold: DefaultModerationThreshold}
}

// Threshold returns the effective threshold for a category.
func (p ModerationPolicy) Threshold(c ModerationCategory) float64 {
	if t, ok := p.Overrides[c]; ok {
		return t
	}
	if p.DefaultThreshold > 0 {
		return p.DefaultThreshold
	}
	return DefaultModerationThreshold
}

// IsEnabled reports whether the category is evaluated.
func (p ModerationPolicy) IsEnabled(c ModerationCategory) bool {
	return !p.Disabled[c]
}

// ModerationSummary aggregates a batch of verdicts.
type ModerationSummary struct {
	TotalChecked int                        `json:"total_checked"`
	TotalFlagged int                        `json:"total_flagged"`
	PassRate     float64                    `json:"pass_rate"`
	Categories   map[ModerationCategory]int `json:"categories"`
}

// ModerationAction records what the caller did with a verdict.
type ModerationAction string

// Moderation actions.
const (
	ModerationActionAllowed ModerationAction = "allowed"
	ModerationActionWarned  ModerationAction = "warned"
	ModerationActionBlocked ModerationAction = "blocked"
)

// ModerationLogEntry is an audit record of a moderation decision.
type ModerationLogEntry struct {
	ID         string
	Content    string
	Category   ModerationCategory
	Confidence float64
	Flagged    bool
	Action     ModerationAction
	Metadata   map[string]string
	CreatedAt  time.Time
}
