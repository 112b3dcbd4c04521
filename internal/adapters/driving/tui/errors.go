package tui

import "errors"

// ErrMissingAnswerService is returned when the answer service is not provided.
var ErrMissingAnswerService = errors.New("tui: answer service is required")

// ErrMissingCourse is returned when no course is selected.
var ErrMissingCourse = errors.New("tui: a course id is required")
