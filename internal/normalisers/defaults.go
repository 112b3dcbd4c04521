package normalisers

import (
	"github.com/learnly-labs/learnly-engine/internal/normalisers/docx"
	"github.com/learnly-labs/learnly-engine/internal/normalisers/markdown"
	"github.com/learnly-labs/learnly-engine/internal/normalisers/pdf"
	"github.com/learnly-labs/learnly-engine/internal/normalisers/plaintext"
)

// RegisterDefaults registers all built-in extractors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(docx.New())
	r.Register(pdf.New())
}

// NewDefaultRegistry returns a registry with the built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}
