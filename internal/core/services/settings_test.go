package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planroomhq/planroom-cli/internal/adapters/driven/storage/memory"
	"github.com/planroomhq/planroom-cli/internal/core/domain"
)

// mockAIValidator implements driven.AIConfigValidator for testing.
type mockAIValidator struct {
	embedErr      error
	ocrErr        error
	lastEmbedding *domain.EmbeddingSettings
}

func (m *mockAIValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	m.lastEmbedding = config
	return m.embedErr
}

func (m *mockAIValidator) ValidateOCR(_ *domain.OCRSettings) error {
	return m.ocrErr
}

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	require.NotNil(t, settings)

	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Search.KeywordSimilarity, settings.Search.KeywordSimilarity)
	assert.Equal(t, defaults.Search.DefaultThreshold, settings.Search.DefaultThreshold)
	assert.Equal(t, defaults.Search.DefaultLimit, settings.Search.DefaultLimit)
	assert.Equal(t, defaults.Ingestion.MaxConcurrent, settings.Ingestion.MaxConcurrent)
	assert.Equal(t, defaults.Ingestion.MaxAttempts, settings.Ingestion.MaxAttempts)
	assert.Empty(t, settings.Embedding.Provider)
	assert.False(t, settings.OCR.Enabled)

	assert.True(t, settings.Scheduler.Enabled)
	requeue := settings.Scheduler.GetTaskConfig(domain.TaskIDRequeueStuck)
	assert.True(t, requeue.Enabled)
	assert.Equal(t, 10*time.Minute, requeue.Interval)
	prune := settings.Scheduler.GetTaskConfig(domain.TaskIDPruneOrphans)
	assert.True(t, prune.Enabled)
	assert.Equal(t, 24*time.Hour, prune.Interval)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("active_project", "proj-42")
	_ = store.Set("search.keyword_similarity", 0.35)
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("ingestion.max_concurrent", 2)
	_ = store.Set("intake.dir", "/tmp/intake")
	_ = store.Set("intake.ignore", []string{"*.tmp", "~$*"})

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "proj-42", settings.ActiveProjectID)
	assert.InDelta(t, 0.35, settings.Search.KeywordSimilarity, 1e-9)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, 2, settings.Ingestion.MaxConcurrent)
	assert.Equal(t, "/tmp/intake", settings.Ingestion.IntakeDir)
	assert.Equal(t, []string{"*.tmp", "~$*"}, settings.Ingestion.IntakeIgnore)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "invalid_provider")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Empty(t, settings.Embedding.Provider)
}

func TestSettingsService_Get_SchedulerOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("scheduler.enabled", false)
	_ = store.Set("scheduler.requeue_stuck.interval", "30m")
	_ = store.Set("scheduler.prune_orphans.enabled", false)

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.False(t, settings.Scheduler.Enabled)
	requeue := settings.Scheduler.GetTaskConfig(domain.TaskIDRequeueStuck)
	assert.True(t, requeue.Enabled)
	assert.Equal(t, 30*time.Minute, requeue.Interval)
	prune := settings.Scheduler.GetTaskConfig(domain.TaskIDPruneOrphans)
	assert.False(t, prune.Enabled)
	assert.Equal(t, 24*time.Hour, prune.Interval)
}

func TestSettingsService_Get_BadIntervalKeepsDefault(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("scheduler.requeue_stuck.interval", "soon")

	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	requeue := settings.Scheduler.GetTaskConfig(domain.TaskIDRequeueStuck)
	assert.Equal(t, 10*time.Minute, requeue.Interval)
}

func TestSettingsService_SaveAndGet_RoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	settings := domain.DefaultAppSettings()
	settings.ActiveProjectID = "proj-7"
	settings.Search.KeywordSimilarity = 0.45
	settings.Search.DefaultLimit = 30
	settings.Embedding.Provider = domain.AIProviderOllama
	settings.Embedding.Model = "nomic-embed-text"
	settings.Embedding.BaseURL = "http://localhost:11434"
	settings.OCR.Enabled = true
	settings.OCR.APIKey = "ocr-key"
	settings.Ingestion.MaxConcurrent = 8
	settings.Ingestion.IntakeDir = "/srv/intake"
	settings.Ingestion.IntakeIgnore = []string{"*.bak"}
	settings.Scheduler.TaskConfigs[domain.TaskIDRequeueStuck] = domain.TaskConfig{
		Enabled:  true,
		Interval: 5 * time.Minute,
	}

	require.NoError(t, service.Save(&settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "proj-7", loaded.ActiveProjectID)
	assert.InDelta(t, 0.45, loaded.Search.KeywordSimilarity, 1e-9)
	assert.Equal(t, 30, loaded.Search.DefaultLimit)
	assert.Equal(t, domain.AIProviderOllama, loaded.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", loaded.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", loaded.Embedding.BaseURL)
	assert.True(t, loaded.OCR.Enabled)
	assert.Equal(t, "ocr-key", loaded.OCR.APIKey)
	assert.Equal(t, 8, loaded.Ingestion.MaxConcurrent)
	assert.Equal(t, "/srv/intake", loaded.Ingestion.IntakeDir)
	assert.Equal(t, []string{"*.bak"}, loaded.Ingestion.IntakeIgnore)
	assert.Equal(t, 5*time.Minute, loaded.Scheduler.GetTaskConfig(domain.TaskIDRequeueStuck).Interval)
}

func TestSettingsService_Save_KeepsExistingSecrets(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetOCRAPIKey("original-key"))

	// Saving a snapshot with blank secrets must not erase them.
	settings, err := service.Get()
	require.NoError(t, err)
	settings.OCR.APIKey = ""
	require.NoError(t, service.Save(settings))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "original-key", loaded.OCR.APIKey)
}

func TestSettingsService_SetActiveProject(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetActiveProject("proj-1"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "proj-1", settings.ActiveProjectID)

	err = service.SetActiveProject("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetEmbeddingProvider("carrier-pigeon", "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", "", ""))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
	assert.Equal(t, "http://localhost:11434", settings.Embedding.BaseURL)

	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOpenAI, "text-embedding-3-large", "", "sk-test"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
}

func TestSettingsService_SetOCRAPIKey(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetOCRAPIKey("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, service.SetOCRAPIKey("vision-key"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.True(t, settings.OCR.Enabled)
	assert.Equal(t, "vision-key", settings.OCR.APIKey)
	assert.True(t, settings.OCR.IsConfigured())
}

func TestSettingsService_SetOCRCredentials(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	err := service.SetOCRCredentials("id", "", "token")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, service.SetOCRCredentials("client-id", "client-secret", "refresh-token"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.True(t, settings.OCR.Enabled)
	assert.Equal(t, "client-id", settings.OCR.ClientID)
	assert.Equal(t, "client-secret", settings.OCR.ClientSecret)
	assert.Equal(t, "refresh-token", settings.OCR.RefreshToken)
	assert.True(t, settings.OCR.IsConfigured())
}

func TestSettingsService_SetKeywordSimilarity(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	for _, bad := range []float64{0, -0.1, 1.01} {
		err := service.SetKeywordSimilarity(bad)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "value %v", bad)
	}

	require.NoError(t, service.SetKeywordSimilarity(0.35))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.InDelta(t, 0.35, settings.Search.KeywordSimilarity, 1e-9)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	defaults := service.GetDefaults()
	assert.Equal(t, domain.DefaultAppSettings(), defaults)
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setup   map[string]any
		wantErr string
	}{
		{
			name:  "defaults are valid",
			setup: nil,
		},
		{
			name:    "keyword similarity out of range",
			setup:   map[string]any{"search.keyword_similarity": 1.5},
			wantErr: "keyword similarity",
		},
		{
			name:    "threshold out of range",
			setup:   map[string]any{"search.default_threshold": 1.0},
			wantErr: "default threshold",
		},
		{
			name:    "limit not positive",
			setup:   map[string]any{"search.default_limit": 0},
			wantErr: "default limit",
		},
		{
			name:    "max concurrent not positive",
			setup:   map[string]any{"ingestion.max_concurrent": -1},
			wantErr: "max concurrent",
		},
		{
			name:    "ocr enabled without credentials",
			setup:   map[string]any{"ocr.enabled": true},
			wantErr: "OCR is enabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			for key, value := range tt.setup {
				require.NoError(t, store.Set(key, value))
			}
			service := NewSettingsService(store, nil)

			err := service.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSettingsService_ValidateEmbeddingConfig(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "ollama")
	_ = store.Set("embedding.model", "nomic-embed-text")

	// Without a validator the check is a no-op.
	service := NewSettingsService(store, nil)
	assert.NoError(t, service.ValidateEmbeddingConfig())

	validator := &mockAIValidator{}
	service = NewSettingsService(store, validator)
	require.NoError(t, service.ValidateEmbeddingConfig())
	require.NotNil(t, validator.lastEmbedding)
	assert.Equal(t, domain.AIProviderOllama, validator.lastEmbedding.Provider)

	failing := &mockAIValidator{embedErr: errors.New("provider unreachable")}
	service = NewSettingsService(store, failing)
	err := service.ValidateEmbeddingConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider unreachable")
}
