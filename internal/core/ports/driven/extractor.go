package driven

import "context"

// TextExtractor pulls plain text out of an uploaded file.
type TextExtractor interface {
	// Extensions returns the lower-case file extensions handled, including the dot.
	Extensions() []string

	// Extract returns the plain text of the file at path.
	Extract(ctx context.Context, path string) (string, error)
}

// ExtractorRegistry selects a TextExtractor by file extension.
type ExtractorRegistry interface {
	// Register adds an extractor for its extensions.
	Register(e TextExtractor)

	// Extract extracts text using the extractor for the path's extension.
	// Unsupported extensions yield empty text and no error.
	Extract(ctx context.Context, path string) (string, error)
}
