// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Converts chunks and queries into vectors
//   - IndexStore: Persists one DocumentIndex per store id, plus the course registry
//   - VectorIndexFactory: Builds a searchable VectorIndex from stored vectors
//   - Chunker: Splits extracted text into overlapping windows
//   - DocumentCatalog: Maps relational document ids to store ids
//   - AttemptStore: Quiz attempts and competency scores
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Text generation. Without it, answers and quizzes are unavailable.
//   - ModerationLog: Audit trail of moderation decisions.
//   - PromptStore: Customisable prompt templates. Without it, built-in defaults are used.
//   - TextExtractor: File format extraction for ingestion from disk.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser, or postprocessor package
package driven
