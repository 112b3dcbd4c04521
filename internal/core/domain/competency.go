package domain

import (
	"math"
	"time"
)

// Competency bounds and blend parameters.
const (
	MinCompetency           = 0
	MaxCompetency           = 100
	DefaultCompetency       = 50
	CompetencyHistoryWindow = 5
	CompetencyPriorWeight   = 0.6
	CompetencyRecentWeight  = 0.4
	adaptiveEasyBelow       = 40
	adaptiveMediumBelow     = 70
	historyHardAtLeast      = 80.0
	historyMediumAtLeast    = 60.0
)

// AttemptRecord is a completed quiz attempt as stored by the platform.
type AttemptRecord struct {
	ID          string
	StudentID   int64
	QuizID      int64
	Percentage  float64
	CompletedAt time.Time
}

// WeightedRecentAverage averages percentages ordered newest first.
// The attempt at position i has weight 1/(i+1). Only the first
// CompetencyHistoryWindow entries are used.
func WeightedRecentAverage(newestFirst []float64) (float64, bool) {
	if len(newestFirst) == 0 {
		return 0, false
	}
	if len(newestFirst) > CompetencyHistoryWindow {
		newestFirst = newestFirst[:CompetencyHistoryWindow]
	}
	var sum, total float64
	for i, pct := range newestFirst {
		w := 1.0 / float64(i+1)
		sum += pct * w
		total += w
	}
	return sum / total, true
}

// BlendCompetency folds a weighted average into the prior score.
// new = round(0.6*old + 0.4*avg), clamped to [0,100].
func BlendCompetency(old int, weightedAverage float64) int {
	v := int(math.Round(CompetencyPriorWeight*float64(old) + CompetencyRecentWeight*weightedAverage))
	return ClampCompetency(v)
}

// ClampCompetency bounds a score to [0,100].
func ClampCompetency(v int) int {
	if v < MinCompetency {
		return MinCompetency
	}
	if v > MaxCompetency {
		return MaxCompetency
	}
	return v
}

// DifficultyForCompetency picks a quiz difficulty from a competency score.
func DifficultyForCompetency(score int) Difficulty {
	switch {
	case score < adaptiveEasyBelow:
		return DifficultyEasy
	case score < adaptiveMediumBelow:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// DifficultyForHistory picks a difficulty from the plain mean of recent percentages.
// An empty history yields medium.
func DifficultyForHistory(percentages []float64) Difficulty {
	if len(percentages) == 0 {
		return DifficultyMedium
	}
	if len(percentages) > CompetencyHistoryWindow {
		percentages = percentages[:CompetencyHistoryWindow]
	}
	var sum float64
	for _, p := range percentages {
		sum += p
	}
	avg := sum / float64(len(percentages))
	switch {
	case avg >= historyHardAtLeast:
		return DifficultyHard
	case avg >= historyMediumAtLeast:
		return DifficultyMedium
	default:
		return DifficultyEasy
	}
}
