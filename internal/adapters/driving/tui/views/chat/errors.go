package chat

import "errors"

// ErrNoAnswerService is returned when no answer service is configured.
var ErrNoAnswerService = errors.New("answer service not available")

// ErrEmptyAnswer is returned when the service returns no response.
var ErrEmptyAnswer = errors.New("no answer returned")
