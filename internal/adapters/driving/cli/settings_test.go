package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnly-labs/learnly-engine/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"postgres://learnly:secret@db:5432/learnly", "postgres://learnly:****@db:5432/learnly"},
		{"postgres://learnly@db/learnly", "postgres://learnly@db/learnly"},
		{"/var/lib/learnly", "/var/lib/learnly"},
		{"host=db user=learnly", "host=db user=learnly"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, maskDSN(tt.input))
	}
}

func TestParseThreshold(t *testing.T) {
	v, err := parseThreshold(" 0.65 ")
	require.NoError(t, err)
	assert.InDelta(t, 0.65, v, 0.0001)

	v, err = parseThreshold("1")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 0.0001)

	for _, bad := range []string{"0", "1.5", "-0.2", "high"} {
		_, err := parseThreshold(bad)
		assert.Error(t, err, bad)
	}
}

func TestSettingsShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings.LLM = domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		Model:    "claude-3-5-sonnet-latest",
		APIKey:   "sk-ant-1234567890",
	}
	ts.settings.settings.Moderation.Disabled = map[domain.ModerationCategory]bool{domain.CategoryReligion: true}
	ts.settings.settings.Moderation.Overrides = map[domain.ModerationCategory]float64{domain.CategoryHealth: 0.5}

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Provider: Anthropic (cloud)")
	assert.Contains(t, out, "API Key: sk-a...7890")
	assert.NotContains(t, out, "sk-ant-1234567890")
	assert.Contains(t, out, "religion: disabled")
	assert.Contains(t, out, "health: 0.50")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_InvalidConfig(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.validateErr = errors.New("LLM provider not configured")

	out, err := executeCommand("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: LLM provider not configured")
}

func TestSettingsModerationCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "moderation", "0.6")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryNone, ts.settings.category)
	assert.InDelta(t, 0.6, ts.settings.threshold, 0.0001)
	assert.Contains(t, out, "Default moderation threshold set to 0.60")

	out, err = executeCommand("settings", "moderation", "--category", "Weapons", "0.3")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryWeapons, ts.settings.category)
	assert.Contains(t, out, "Moderation threshold for weapons set to 0.30")

	_, err = executeCommand("settings", "moderation", "--category", "spam", "0.3")
	assert.EqualError(t, err, "unknown moderation category: spam")
}

func TestSettingsEmbeddingCmd_ReadsChoices(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	rootCmd.SetIn(strings.NewReader("2\n\nsk-test-123456789\n"))
	defer rootCmd.SetIn(nil)

	out, err := executeCommand("settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", ts.settings.settings.Embedding.Model)
	assert.Equal(t, "sk-test-123456789", ts.settings.settings.Embedding.APIKey)
	assert.Contains(t, out, "Embedding provider configured: OpenAI (cloud)")
}
