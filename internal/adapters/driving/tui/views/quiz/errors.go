package quiz

import "errors"

// Error definitions for the quiz view.
var (
	// ErrNoQuizService indicates that no quiz service was provided.
	ErrNoQuizService = errors.New("quiz service is required")

	// ErrNoGradingService indicates that no grading service was provided.
	ErrNoGradingService = errors.New("grading service is required")

	// ErrNoQuestions indicates the generated quiz was empty.
	ErrNoQuestions = errors.New("no questions were generated")
)
