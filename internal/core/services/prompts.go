package services

import (
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// promptLoader resolves prompt templates from an optional store.
type promptLoader struct {
	store driven.PromptStore
}

// SetPromptStore sets the store used for customised prompts.
func (p *promptLoader) SetPromptStore(store driven.PromptStore) {
	p.store = store
}

// load returns the stored template, or the built-in default.
func (p *promptLoader) load(name string) string {
	if p.store != nil {
		if tmpl, err := p.store.Load(name); err == nil && tmpl != "" {
			return tmpl
		}
		logger.Debug("Using built-in %s prompt", name)
	}
	return driven.DefaultPrompts()[name]
}
