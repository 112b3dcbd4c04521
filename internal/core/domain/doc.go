// Package domain defines the core entities of the Learnly engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A window of document text, the unit of embedding
//   - DocumentIndex: The persisted vectors and chunks of one document
//   - RetrievalResult: A ranked passage returned by retrieval
//   - ModerationVerdict: The outcome of the policy gate
//   - QuizQuestion, AnswerKey, GradedAttempt: Assessment types
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
