package driving

import "github.com/learnly-labs/learnly-engine/internal/core/domain"

// SettingsService manages engine settings.
type SettingsService interface {
	// Get resolves current settings over the defaults.
	Get() (*domain.AppSettings, error)

	// Save persists settings.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetModerationThreshold sets the default threshold, or a category
	// override when category is not CategoryNone.
	SetModerationThreshold(category domain.ModerationCategory, threshold float64) error

	// Validate checks that the settings can run the engine.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
