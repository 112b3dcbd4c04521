// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/learnly-labs/learnly-engine/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/learnly-labs/learnly-engine/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/learnly-labs/learnly-engine/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/learnly-labs/learnly-engine/internal/adapters/driven/llm/ollama"
	openaillm "github.com/learnly-labs/learnly-engine/internal/adapters/driven/llm/openai"
	"github.com/learnly-labs/learnly-engine/internal/adapters/driven/ratelimit"
	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// configHint is appended to configuration errors.
const configHint = "Run 'learnly settings show' to check provider settings"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string // Non-fatal issues; the affected service may still be usable.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates both providers from settings and wraps them in rate limiters.
// A provider that fails to construct is left nil with a warning. A provider
// that is unreachable is kept, since the engine treats provider errors as
// soft failures, and a warning is recorded.
func Init(ctx context.Context, settings *domain.AppSettings) *InitResult {
	result := &InitResult{}

	embedder, err := CreateEmbeddingService(&settings.Embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%v: %v. %s", domain.ErrEmbeddingUnavailable, err, configHint))
	case embedder == nil:
		result.Warnings = append(result.Warnings, "embedding provider is not configured")
	default:
		if err := ping(ctx, embedder.Ping); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("embedding provider unreachable: %v", err))
		}
		result.EmbeddingService = ratelimit.WrapEmbedding(embedder, ratelimit.Config{
			RequestsPerSecond: settings.RateLimit.EmbeddingRequestsPerSecond,
			Burst:             settings.RateLimit.Burst,
		})
	}

	llm, err := CreateLLMService(&settings.LLM)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%v: %v. %s", domain.ErrLLMUnavailable, err, configHint))
	case llm == nil:
		result.Warnings = append(result.Warnings, "LLM provider is not configured")
	default:
		if err := ping(ctx, llm.Ping); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("LLM provider unreachable: %v", err))
		}
		result.LLMService = ratelimit.WrapLLM(llm, ratelimit.Config{
			RequestsPerSecond: settings.RateLimit.LLMRequestsPerSecond,
			Burst:             settings.RateLimit.Burst,
		})
	}

	for _, w := range result.Warnings {
		logger.Warn("%s", w)
	}
	return result
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(context.Background(), svc.Ping)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(context.Background(), svc.Ping)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, nil
	}
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := domain.EmbeddingDimensions()[settings.Model]

	switch settings.Provider {
	case domain.AIProviderOllama:
		svc, err := ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	var (
		svc driven.LLMService
		err error
	)
	switch settings.Provider {
	case domain.AIProviderOllama:
		svc, err = newOllamaLLM(settings)
	case domain.AIProviderOpenAI:
		svc, err = newOpenAILLM(settings)
	case domain.AIProviderAnthropic:
		svc, err = newAnthropicLLM(settings)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newOllamaLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func newAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
