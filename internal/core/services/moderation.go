package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// Ensure ModerationService implements the interface.
var _ driving.ModerationService = (*ModerationService)(nil)

// matchWeight is the confidence contributed by each pattern match.
const matchWeight = 0.2

// educationalDiscount scales every category when the text looks educational.
const educationalDiscount = 0.5

// moderationRules lists the keyword stems of each category in evaluation order.
// Each stem group becomes one case-insensitive pattern matching whole words
// that start with one of the stems.
var moderationRules = []struct {
	category domain.ModerationCategory
	stems    []string
}{
	{domain.CategoryHate, []string{
		"hate|racist|sexist|discriminat",
		"slur|offensive|derogatory",
	}},
	{domain.CategoryViolence, []string{
		"kill|murder|attack|assault|harm|hurt|weapon",
		"fight|beat|strike|punch|shoot",
	}},
	{domain.CategoryWeapons, []string{
		"gun|rifle|pistol|knife|bomb|explosive",
		"weapon|ammunition|firearm",
	}},
	{domain.CategoryReligion, []string{
		"extremis|radical|terrorist",
	}},
	{domain.CategorySafety, []string{
		"danger|unsafe|risk|hazard|threat",
		"accident|injury|death",
	}},
	{domain.CategoryHealth, []string{
		"drug|alcohol|substance|addiction",
		"suicide|self-harm|overdose",
	}},
	{domain.CategoryHarassment, []string{
		"bully|harass|intimidat|threaten",
		"stalk|abuse|torment",
	}},
	{domain.CategorySexual, []string{
		"sex|sexual|porn|explicit|nude",
		"intimate|erotic|adult",
	}},
}

// educationalMarkers are substrings that mark text as educational.
var educationalMarkers = []string{"learn", "study", "understand", "history", "literature", "science"}

type compiledRule struct {
	category domain.ModerationCategory
	patterns []*regexp.Regexp
}

// ModerationService is a rule-based text classifier.
// It holds only compiled patterns; thresholds arrive with each call.
type ModerationService struct {
	rules []compiledRule
	log   driven.ModerationLog
	now   func() time.Time
}

// NewModerationService creates a moderation service.
// log may be nil, in which case Audit does nothing.
func NewModerationService(log driven.ModerationLog) *ModerationService {
	rules := make([]compiledRule, 0, len(moderationRules))
	for _, r := range moderationRules {
		cr := compiledRule{category: r.category}
		for _, stems := range r.stems {
			cr.patterns = append(cr.patterns, regexp.MustCompile(`(?i)\b(`+stems+`)\w*\b`))
		}
		rules = append(rules, cr)
	}
	return &ModerationService{rules: rules, log: log, now: time.Now}
}

// Moderate classifies text under policy.
func (s *ModerationService) Moderate(_ context.Context, text string, policy domain.ModerationPolicy) domain.ModerationVerdict {
	verdict := domain.ModerationVerdict{Category: domain.CategoryNone, Warnings: []string{}}
	educational := isEducational(text)

	topFlagged := 0.0
	for _, rule := range s.rules {
		if !policy.IsEnabled(rule.category) {
			continue
		}
		matches := 0
		for _, p := range rule.patterns {
			matches += len(p.FindAllStringIndex(text, -1))
		}
		if matches == 0 {
			continue
		}

		confidence := min(float64(matches)*matchWeight, 1.0)
		if educational {
			confidence *= educationalDiscount
		}
		if confidence > verdict.Confidence {
			verdict.Confidence = confidence
		}

		if confidence >= policy.Threshold(rule.category) {
			verdict.Warnings = append(verdict.Warnings,
				fmt.Sprintf("Content flagged for %s (confidence: %.2f)", rule.category, confidence))
			if confidence > topFlagged {
				topFlagged = confidence
				verdict.Category = rule.category
			}
		}
	}

	verdict.Passed = len(verdict.Warnings) == 0
	if !verdict.Passed {
		logger.Debug("Moderation flagged %s (%.2f)", verdict.Category, verdict.Confidence)
	}
	return verdict
}

func isEducational(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range educationalMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// ModerateBatch moderates each text independently.
func (s *ModerationService) ModerateBatch(ctx context.Context, texts []string, policy domain.ModerationPolicy) []domain.ModerationVerdict {
	verdicts := make([]domain.ModerationVerdict, len(texts))
	for i, text := range texts {
		verdicts[i] = s.Moderate(ctx, text, policy)
	}
	return verdicts
}

// Summarise counts flagged verdicts per reported category.
// An empty batch has a pass rate of 1.
func (s *ModerationService) Summarise(verdicts []domain.ModerationVerdict) domain.ModerationSummary {
	summary := domain.ModerationSummary{
		TotalChecked: len(verdicts),
		PassRate:     1,
		Categories:   make(map[domain.ModerationCategory]int),
	}
	for _, v := range verdicts {
		if v.Passed {
			continue
		}
		summary.TotalFlagged++
		summary.Categories[v.Category]++
	}
	if summary.TotalChecked > 0 {
		summary.PassRate = float64(summary.TotalChecked-summary.TotalFlagged) / float64(summary.TotalChecked)
	}
	return summary
}

// Audit records a moderation decision in the log.
func (s *ModerationService) Audit(
	ctx context.Context,
	text string,
	verdict domain.ModerationVerdict,
	action domain.ModerationAction,
	metadata map[string]string,
) error {
	if s.log == nil {
		return nil
	}
	entry := domain.ModerationLogEntry{
		ID:         uuid.NewString(),
		Content:    text,
		Category:   verdict.Category,
		Confidence: verdict.Confidence,
		Flagged:    !verdict.Passed,
		Action:     action,
		Metadata:   metadata,
		CreatedAt:  s.now(),
	}
	if err := s.log.Record(ctx, entry); err != nil {
		return fmt.Errorf("record moderation decision: %w", err)
	}
	return nil
}
