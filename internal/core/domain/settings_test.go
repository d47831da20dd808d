package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests provider recognition
func TestAIProvider_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		provider AIProvider
		expected bool
	}{
		{"ollama is valid", AIProviderOllama, true},
		{"openai is valid", AIProviderOpenAI, true},
		{"empty is invalid", AIProvider(""), false},
		{"anthropic is not an embedding provider", AIProvider("anthropic"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.IsValid())
		})
	}
}

// TestAIProvider_RequiresAPIKey tests key requirements per provider
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
}

// TestEmbeddingSettings_IsConfigured tests embedding readiness checks
func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{
			name:     "unconfigured",
			settings: EmbeddingSettings{},
			expected: false,
		},
		{
			name: "ollama without key",
			settings: EmbeddingSettings{
				Provider: AIProviderOllama,
				Model:    "nomic-embed-text",
			},
			expected: true,
		},
		{
			name: "openai without key",
			settings: EmbeddingSettings{
				Provider: AIProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			expected: false,
		},
		{
			name: "openai with key",
			settings: EmbeddingSettings{
				Provider: AIProviderOpenAI,
				Model:    "text-embedding-3-small",
				APIKey:   "sk-test",
			},
			expected: true,
		},
		{
			name: "unknown provider",
			settings: EmbeddingSettings{
				Provider: AIProvider("mystery"),
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestOCRSettings_IsConfigured tests OCR readiness checks
func TestOCRSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings OCRSettings
		expected bool
	}{
		{"disabled", OCRSettings{}, false},
		{"enabled without credentials", OCRSettings{Enabled: true}, false},
		{"api key", OCRSettings{Enabled: true, APIKey: "key"}, true},
		{
			"oauth triple",
			OCRSettings{
				Enabled:      true,
				ClientID:     "id",
				ClientSecret: "secret",
				RefreshToken: "token",
			},
			true,
		},
		{
			"incomplete oauth",
			OCRSettings{Enabled: true, ClientID: "id"},
			false,
		},
		{
			"credentials but disabled",
			OCRSettings{APIKey: "key"},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestDefaultAppSettings tests the defaults
func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.InDelta(t, 0.5, s.Search.KeywordSimilarity, 1e-9)
	assert.InDelta(t, 0.2, s.Search.DefaultThreshold, 1e-9)
	assert.Equal(t, DefaultSearchLimit, s.Search.DefaultLimit)
	assert.Equal(t, 5, s.Ingestion.MaxConcurrent)
	assert.Equal(t, 3, s.Ingestion.MaxAttempts)

	// AI features stay unconfigured until the user opts in.
	assert.False(t, s.Embedding.IsConfigured())
	assert.False(t, s.OCR.IsConfigured())

	assert.True(t, s.Scheduler.Enabled)
	requeue := s.Scheduler.GetTaskConfig(TaskIDRequeueStuck)
	assert.True(t, requeue.Enabled)
	assert.Equal(t, 10*time.Minute, requeue.Interval)
	prune := s.Scheduler.GetTaskConfig(TaskIDPruneOrphans)
	assert.True(t, prune.Enabled)
	assert.Equal(t, 24*time.Hour, prune.Interval)
}

// TestSchedulerConfig_GetTaskConfig tests lookup on nil and missing maps
func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	var c SchedulerConfig
	assert.Equal(t, TaskConfig{}, c.GetTaskConfig(TaskIDRequeueStuck))

	c = SchedulerConfig{TaskConfigs: map[string]TaskConfig{}}
	assert.Equal(t, TaskConfig{}, c.GetTaskConfig("missing"))
}

// TestEmbeddingDimensions tests known model dimensions
func TestEmbeddingDimensions(t *testing.T) {
	dims := EmbeddingDimensions()
	assert.Equal(t, 768, dims["nomic-embed-text"])
	assert.Equal(t, 1536, dims["text-embedding-3-small"])
	assert.Equal(t, 3072, dims["text-embedding-3-large"])
}
