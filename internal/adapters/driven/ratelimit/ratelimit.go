// Package ratelimit throttles calls to AI providers with token buckets.
//
// The decorators wrap any driven.EmbeddingService or driven.LLMService and
// block on the limiter before each call. A zero rate disables throttling and
// the wrapped service is returned unchanged.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
)

// Ensure decorators implement the interfaces.
var (
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
	_ driven.LLMService       = (*LLMService)(nil)
)

// Config holds limiter configuration for one provider.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the maximum burst size. Values below 1 are treated as 1.
	Burst int
}

func (c Config) limiter() *rate.Limiter {
	burst := c.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RequestsPerSecond), burst)
}

// EmbeddingService rate-limits an embedding provider.
type EmbeddingService struct {
	driven.EmbeddingService
	limiter *rate.Limiter
}

// WrapEmbedding returns svc throttled by cfg, or svc itself when cfg disables limiting.
func WrapEmbedding(svc driven.EmbeddingService, cfg Config) driven.EmbeddingService {
	if svc == nil || cfg.RequestsPerSecond <= 0 {
		return svc
	}
	return &EmbeddingService{EmbeddingService: svc, limiter: cfg.limiter()}
}

// Embed waits for a token, then embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return s.EmbeddingService.Embed(ctx, text)
}

// LLMService rate-limits a text generation provider.
type LLMService struct {
	driven.LLMService
	limiter *rate.Limiter
}

// WrapLLM returns svc throttled by cfg, or svc itself when cfg disables limiting.
func WrapLLM(svc driven.LLMService, cfg Config) driven.LLMService {
	if svc == nil || cfg.RequestsPerSecond <= 0 {
		return svc
	}
	return &LLMService{LLMService: svc, limiter: cfg.limiter()}
}

// Generate waits for a token, then generates.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return s.LLMService.Generate(ctx, prompt, opts)
}

// Chat waits for a token, then chats.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit: %w", err)
	}
	return s.LLMService.Chat(ctx, messages, opts)
}
