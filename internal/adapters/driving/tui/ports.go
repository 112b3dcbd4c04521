// Package tui provides an interactive terminal user interface for course chat.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer synthesises grounded answers. Required.
	Answer driving.AnswerService

	// Retrieval powers the passage explorer. Optional.
	Retrieval driving.RetrievalService

	// Quiz generates practice quizzes. Optional.
	Quiz driving.QuizService

	// Grading scores quizzes and tracks competency. Optional.
	Grading driving.GradingService

	// Policy is the moderation policy applied to chat.
	Policy domain.ModerationPolicy

	// CourseID is the course the session is about.
	CourseID int64

	// StudentID identifies the learner; zero disables competency tracking.
	StudentID int64

	// TopK is the number of passages the explorer shows. Zero uses the default.
	TopK int

	// QuizQuestions is the practice quiz length. Zero uses the default.
	QuizQuestions int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.CourseID <= 0 {
		return ErrMissingCourse
	}
	return nil
}
