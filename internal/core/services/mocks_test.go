package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Texts are embedded by embedFn, or to a fixed vector when embedFn is nil.
type mockEmbeddingService struct {
	embedFn   func(text string) ([]float32, error)
	embedding []float32
	embedErr  error

	mu    sync.Mutex
	calls []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.embedFn != nil {
		return m.embedFn(text)
	}
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embed"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return nil
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

func (m *mockEmbeddingService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// keywordEmbedder places texts on axes by keyword so tests can reason about distance.
// Texts matching no keyword land on the last axis.
func keywordEmbedder(keywords ...string) func(string) ([]float32, error) {
	return func(text string) ([]float32, error) {
		vec := make([]float32, len(keywords)+1)
		lower := strings.ToLower(text)
		hit := false
		for i, kw := range keywords {
			if strings.Contains(lower, kw) {
				vec[i] = 1
				hit = true
			}
		}
		if !hit {
			vec[len(keywords)] = 1
		}
		return vec, nil
	}
}

// mockLLMService implements driven.LLMService for testing.
type mockLLMService struct {
	response    string
	generateErr error
	chatErr     error

	lastPrompt   string
	lastOpts     driven.GenerateOptions
	lastMessages []driven.ChatMessage
	lastChatOpts driven.ChatOptions

	generateCalls int
	chatCalls     int
}

func (m *mockLLMService) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.generateCalls++
	m.lastPrompt = prompt
	m.lastOpts = opts
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.response, nil
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	m.lastChatOpts = opts
	if m.chatErr != nil {
		return "", m.chatErr
	}
	return m.response, nil
}

func (m *mockLLMService) ModelName() string {
	return "mock-llm"
}

func (m *mockLLMService) Ping(_ context.Context) error {
	return nil
}

func (m *mockLLMService) Close() error {
	return nil
}

// failingIndexStore wraps an IndexStore and fails saves.
type failingIndexStore struct {
	driven.IndexStore
	saveErr error
	loadErr error
}

func (f *failingIndexStore) Save(ctx context.Context, idx *domain.DocumentIndex) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.IndexStore.Save(ctx, idx)
}

func (f *failingIndexStore) Load(ctx context.Context, storeID string) (*domain.DocumentIndex, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.IndexStore.Load(ctx, storeID)
}

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", errors.New("prompt not found")
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}
