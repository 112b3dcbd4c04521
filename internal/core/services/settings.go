package services

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driven"
	"github.com/learnly-labs/learnly-engine/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyLLMProvider        = "llm.provider"
	keyLLMModel           = "llm.model"
	keyLLMBaseURL         = "llm.base_url"
	keyLLMAPIKey          = "llm.api_key"
	keyChunkSize          = "chunk.size"
	keyChunkOverlap       = "chunk.overlap"
	keyTopK               = "retrieval.top_k"
	keyQuizTopK           = "quiz.top_k"
	keyModerationDefault  = "moderation.threshold"
	keyModerationPrefix   = "moderation.thresholds."
	keyModerationDisabled = "moderation.disabled"
	keyStorageDriver      = "storage.driver"
	keyStorageDSN         = "storage.dsn"
	keyIndexDir           = "index.dir"
	keyLLMRate            = "ratelimit.llm_rps"
	keyEmbedRate          = "ratelimit.embedding_rps"
	keyRateBurst          = "ratelimit.burst"
)

// defaultIndexDirName is created next to the config file.
const defaultIndexDirName = "indices"

// SettingsService manages engine settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current settings, falling back to defaults per key.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Chunk: domain.ChunkSettings{
			Size:    s.getInt(keyChunkSize, defaults.Chunk.Size),
			Overlap: s.getIntAllowZero(keyChunkOverlap, defaults.Chunk.Overlap),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:     s.getInt(keyTopK, defaults.Retrieval.TopK),
			QuizTopK: s.getInt(keyQuizTopK, defaults.Retrieval.QuizTopK),
		},
		Moderation: s.getModerationPolicy(defaults.Moderation),
		Storage: domain.StorageSettings{
			Driver:   s.getStorageDriver(defaults.Storage.Driver),
			DSN:      s.configStore.GetString(keyStorageDSN),
			IndexDir: s.getString(keyIndexDir, s.defaultIndexDir()),
		},
		RateLimit: domain.RateLimitSettings{
			LLMRequestsPerSecond:       s.configStore.GetFloat(keyLLMRate),
			EmbeddingRequestsPerSecond: s.configStore.GetFloat(keyEmbedRate),
			Burst:                      s.getInt(keyRateBurst, defaults.RateLimit.Burst),
		},
	}

	return settings, nil
}

// configValue is one key written by Save.
type configValue struct {
	key   string
	value any
}

// Save persists settings. Empty API keys are not written so that keys
// supplied through the environment are never blanked in the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []configValue{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyChunkSize, settings.Chunk.Size},
		{keyChunkOverlap, settings.Chunk.Overlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyQuizTopK, settings.Retrieval.QuizTopK},
		{keyModerationDefault, settings.Moderation.Threshold(domain.CategoryNone)},
		{keyStorageDriver, string(settings.Storage.Driver)},
		{keyStorageDSN, settings.Storage.DSN},
		{keyIndexDir, settings.Storage.IndexDir},
		{keyLLMRate, settings.RateLimit.LLMRequestsPerSecond},
		{keyEmbedRate, settings.RateLimit.EmbeddingRequestsPerSecond},
		{keyRateBurst, settings.RateLimit.Burst},
	}
	if settings.Embedding.APIKey != "" {
		values = append(values, configValue{keyEmbedAPIKey, settings.Embedding.APIKey})
	}
	if settings.LLM.APIKey != "" {
		values = append(values, configValue{keyLLMAPIKey, settings.LLM.APIKey})
	}
	disabled := []string{}
	for _, category := range domain.AllModerationCategories() {
		if t, ok := settings.Moderation.Overrides[category]; ok {
			values = append(values, configValue{keyModerationPrefix + category.String(), t})
		}
		if settings.Moderation.Disabled[category] {
			disabled = append(disabled, category.String())
		}
	}
	values = append(values, configValue{keyModerationDisabled, disabled})

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if provider == domain.AIProviderAnthropic {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	if provider.RequiresAPIKey() {
		settings.Embedding.BaseURL = ""
	}
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	if provider.RequiresAPIKey() {
		settings.LLM.BaseURL = ""
	}
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetModerationThreshold sets the default threshold for CategoryNone and a
// per-category override otherwise.
func (s *SettingsService) SetModerationThreshold(category domain.ModerationCategory, threshold float64) error {
	if !category.IsValid() {
		return fmt.Errorf("invalid moderation category: %s", category)
	}
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("%w: threshold must be in (0, 1], got %.2f", domain.ErrInvalidInput, threshold)
	}
	if category == domain.CategoryNone {
		return s.configStore.Set(keyModerationDefault, threshold)
	}
	return s.configStore.Set(keyModerationPrefix+category.String(), threshold)
}

// Validate checks that the settings can run the engine.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("LLM provider %q is not configured", settings.LLM.Provider))
	}
	if settings.Chunk.Size <= 0 || settings.Chunk.Overlap < 0 || settings.Chunk.Overlap >= settings.Chunk.Size {
		errs = append(errs, fmt.Errorf("chunk overlap %d must be in [0, %d)", settings.Chunk.Overlap, settings.Chunk.Size))
	}
	if settings.Storage.Driver == domain.StorageDriverPostgres && settings.Storage.DSN == "" {
		errs = append(errs, errors.New("storage driver postgres requires storage.dsn"))
	}
	return errors.Join(errs...)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStorageDriver(defaultVal domain.StorageDriver) domain.StorageDriver {
	driver := domain.StorageDriver(s.configStore.GetString(keyStorageDriver))
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}

func (s *SettingsService) getModerationPolicy(defaults domain.ModerationPolicy) domain.ModerationPolicy {
	policy := defaults
	if t := s.configStore.GetFloat(keyModerationDefault); t > 0 {
		policy.DefaultThreshold = t
	}
	for _, category := range domain.AllModerationCategories() {
		key := keyModerationPrefix + category.String()
		if _, exists := s.configStore.Get(key); !exists {
			continue
		}
		if policy.Overrides == nil {
			policy.Overrides = make(map[domain.ModerationCategory]float64)
		}
		policy.Overrides[category] = s.configStore.GetFloat(key)
	}
	for _, name := range s.configStore.GetStringSlice(keyModerationDisabled) {
		category := domain.ModerationCategory(name)
		if category == domain.CategoryNone || !category.IsValid() {
			continue
		}
		if policy.Disabled == nil {
			policy.Disabled = make(map[domain.ModerationCategory]bool)
		}
		policy.Disabled[category] = true
	}
	return policy
}

func (s *SettingsService) defaultIndexDir() string {
	path := s.configStore.Path()
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), defaultIndexDirName)
}
