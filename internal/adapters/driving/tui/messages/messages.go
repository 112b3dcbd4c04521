// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the course conversation.
	ViewChat
	// ViewExplore searches course passages directly.
	ViewExplore
	// ViewQuiz runs a practice quiz.
	ViewQuiz
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewExplore:
		return "explore"
	case ViewQuiz:
		return "quiz"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// AnswerCompleted carries a chat answer back to the model.
type AnswerCompleted struct {
	Query    string
	Response *domain.AnswerResponse
	Err      error
}

// RetrievalCompleted carries ranked passages back to the model.
type RetrievalCompleted struct {
	Query   string
	Results []domain.RetrievalResult
}

// QuizGenerated carries a generated quiz.
type QuizGenerated struct {
	Difficulty domain.Difficulty
	Questions  []domain.QuizQuestion
	Err        error
}

// QuizGraded carries the graded attempt and the updated competency.
// Competency is negative when it was not recorded.
type QuizGraded struct {
	Attempt    domain.GradedAttempt
	Competency int
	Err        error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
