// Package chunker provides a fixed-size sliding-window text chunker.
package chunker

import (
	"iter"
	"unicode/utf8"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Verify interface compliance.
var _ driven.Chunker = (*Processor)(nil)

// Processor splits text into fixed-size windows that overlap by a fixed
// number of characters. Sizes are measured in runes, not bytes.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Size returns the configured chunk size.
func (p *Processor) Size() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Chunks returns a lazy sequence over the windows of text.
// Each window starts chunkSize-overlap characters after the previous one.
// The sequence ends with the first window that reaches the end of the text,
// which may be shorter than chunkSize. Empty text yields nothing.
func (p *Processor) Chunks(text string) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		if text == "" {
			return
		}

		// Index rune boundaries once so windows never split a character.
		offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
		for i := range text {
			offsets = append(offsets, i)
		}
		offsets = append(offsets, len(text))
		runeLen := len(offsets) - 1

		step := p.chunkSize - p.overlap
		ordinal := 0
		for start := 0; ; start += step {
			end := min(start+p.chunkSize, runeLen)
			chunk := domain.Chunk{
				Text:    text[offsets[start]:offsets[end]],
				Ordinal: ordinal,
			}
			if !yield(chunk) || end == runeLen {
				return
			}
			ordinal++
		}
	}
}

// Split collects every chunk of text.
func (p *Processor) Split(text string) []domain.Chunk {
	chunks := make([]domain.Chunk, 0, Count(utf8.RuneCountInString(text), p.chunkSize, p.overlap))
	for c := range p.Chunks(text) {
		chunks = append(chunks, c)
	}
	return chunks
}

// Count returns the number of chunks produced for a text of length characters:
// ceil((length-overlap)/(size-overlap)) when length > size, 1 for shorter
// non-empty text, otherwise 0.
func Count(length, size, overlap int) int {
	if length <= 0 || size <= overlap {
		return 0
	}
	if length <= size {
		return 1
	}
	step := size - overlap
	return (length - overlap + step - 1) / step
}
