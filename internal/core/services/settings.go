package services

import (
	"fmt"
	"time"

	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir       = "data_dir"
	keyActiveProject = "active_project"
	keyKeywordSim    = "search.keyword_similarity"
	keyThreshold     = "search.default_threshold"
	keyLimit         = "search.default_limit"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyOCREnabled    = "ocr.enabled"
	keyOCRAPIKey     = "ocr.api_key"
	keyOCRClientID   = "ocr.client_id"
	keyOCRSecret     = "ocr.client_secret"
	keyOCRRefresh    = "ocr.refresh_token"
	keyMaxConcurrent = "ingestion.max_concurrent"
	keyMaxAttempts   = "ingestion.max_attempts"
	keyIntakeDir     = "intake.dir"
	keyIntakeIgnore  = "intake.ignore"
	keySchedulerOn   = "scheduler.enabled"
)

// taskConfigKeys maps task IDs to their TOML key stems.
var taskConfigKeys = map[string]string{
	domain.TaskIDRequeueStuck: "requeue_stuck",
	domain.TaskIDPruneOrphans: "prune_orphans",
}

// SettingsService manages application settings.
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

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir:         s.configStore.GetString(keyDataDir),
		ActiveProjectID: s.configStore.GetString(keyActiveProject),
		Search: domain.SearchSettings{
			KeywordSimilarity: s.getFloat(keyKeywordSim, defaults.Search.KeywordSimilarity),
			DefaultThreshold:  s.getFloat(keyThreshold, defaults.Search.DefaultThreshold),
			DefaultLimit:      s.getInt(keyLimit, defaults.Search.DefaultLimit),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider),
			Model:    s.configStore.GetString(keyEmbedModel),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		OCR: domain.OCRSettings{
			Enabled:      s.getBool(keyOCREnabled, defaults.OCR.Enabled),
			APIKey:       s.configStore.GetString(keyOCRAPIKey),
			ClientID:     s.configStore.GetString(keyOCRClientID),
			ClientSecret: s.configStore.GetString(keyOCRSecret),
			RefreshToken: s.configStore.GetString(keyOCRRefresh),
		},
		Ingestion: domain.IngestionSettings{
			MaxConcurrent: s.getInt(keyMaxConcurrent, defaults.Ingestion.MaxConcurrent),
			MaxAttempts:   s.getInt(keyMaxAttempts, defaults.Ingestion.MaxAttempts),
			IntakeDir:     s.configStore.GetString(keyIntakeDir),
			IntakeIgnore:  s.configStore.GetStringSlice(keyIntakeIgnore),
		},
		Scheduler: s.getSchedulerConfig(defaults.Scheduler),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyDataDir:       settings.DataDir,
		keyActiveProject: settings.ActiveProjectID,
		keyKeywordSim:    settings.Search.KeywordSimilarity,
		keyThreshold:     settings.Search.DefaultThreshold,
		keyLimit:         settings.Search.DefaultLimit,
		keyEmbedProvider: settings.Embedding.Provider.String(),
		keyEmbedModel:    settings.Embedding.Model,
		keyEmbedBaseURL:  settings.Embedding.BaseURL,
		keyOCREnabled:    settings.OCR.Enabled,
		keyMaxConcurrent: settings.Ingestion.MaxConcurrent,
		keyMaxAttempts:   settings.Ingestion.MaxAttempts,
		keyIntakeDir:     settings.Ingestion.IntakeDir,
		keySchedulerOn:   settings.Scheduler.Enabled,
	}
	for key, value := range values {
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	if len(settings.Ingestion.IntakeIgnore) > 0 {
		if err := s.configStore.Set(keyIntakeIgnore, settings.Ingestion.IntakeIgnore); err != nil {
			return fmt.Errorf("save %s: %w", keyIntakeIgnore, err)
		}
	}

	// Secrets only persist when set, so saving a settings snapshot
	// never blanks credentials the caller did not touch.
	secrets := map[string]string{
		keyEmbedAPIKey: settings.Embedding.APIKey,
		keyOCRAPIKey:   settings.OCR.APIKey,
		keyOCRClientID: settings.OCR.ClientID,
		keyOCRSecret:   settings.OCR.ClientSecret,
		keyOCRRefresh:  settings.OCR.RefreshToken,
	}
	for key, value := range secrets {
		if value == "" {
			continue
		}
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}

	for taskID, stem := range taskConfigKeys {
		cfg := settings.Scheduler.GetTaskConfig(taskID)
		prefix := "scheduler." + stem + "."
		if err := s.configStore.Set(prefix+"enabled", cfg.Enabled); err != nil {
			return fmt.Errorf("save %senabled: %w", prefix, err)
		}
		if cfg.Interval > 0 {
			if err := s.configStore.Set(prefix+"interval", cfg.Interval.String()); err != nil {
				return fmt.Errorf("save %sinterval: %w", prefix, err)
			}
		}
	}

	return nil
}

// SetActiveProject updates the caller's active project.
func (s *SettingsService) SetActiveProject(projectID string) error {
	if projectID == "" {
		return fmt.Errorf("%w: project id is required", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyActiveProject, projectID); err != nil {
		return fmt.Errorf("save active project: %w", err)
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: invalid embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	if model != "" {
		settings.Embedding.Model = model
	} else if defaultModel, ok := domain.DefaultEmbeddingModels()[provider]; ok {
		settings.Embedding.Model = defaultModel
	}

	settings.Embedding.BaseURL = baseURL
	if provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = "http://localhost:11434"
	}

	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetOCRAPIKey enables the OCR fallback with an API key.
func (s *SettingsService) SetOCRAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: API key is required", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.OCR.Enabled = true
	settings.OCR.APIKey = apiKey
	return s.Save(settings)
}

// SetOCRCredentials enables the OCR fallback with OAuth credentials.
func (s *SettingsService) SetOCRCredentials(clientID, clientSecret, refreshToken string) error {
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return fmt.Errorf("%w: client id, client secret and refresh token are all required", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.OCR.Enabled = true
	settings.OCR.ClientID = clientID
	settings.OCR.ClientSecret = clientSecret
	settings.OCR.RefreshToken = refreshToken
	return s.Save(settings)
}

// SetKeywordSimilarity updates the placeholder similarity assigned to
// keyword-only hits.
func (s *SettingsService) SetKeywordSimilarity(value float64) error {
	if value <= 0 || value > 1 {
		return fmt.Errorf("%w: keyword similarity must be in (0, 1], got %v", domain.ErrInvalidInput, value)
	}
	if err := s.configStore.Set(keyKeywordSim, value); err != nil {
		return fmt.Errorf("save keyword similarity: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Validate checks that current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if v := settings.Search.KeywordSimilarity; v <= 0 || v > 1 {
		return fmt.Errorf("keyword similarity must be in (0, 1], got %v", v)
	}
	if v := settings.Search.DefaultThreshold; v < 0 || v >= 1 {
		return fmt.Errorf("default threshold must be in [0, 1), got %v", v)
	}
	if settings.Search.DefaultLimit <= 0 {
		return fmt.Errorf("default limit must be positive, got %d", settings.Search.DefaultLimit)
	}
	if settings.Ingestion.MaxConcurrent <= 0 {
		return fmt.Errorf("max concurrent must be positive, got %d", settings.Ingestion.MaxConcurrent)
	}
	if settings.Ingestion.MaxAttempts <= 0 {
		return fmt.Errorf("max attempts must be positive, got %d", settings.Ingestion.MaxAttempts)
	}
	if p := settings.Embedding.Provider; p != "" && !p.IsValid() {
		return fmt.Errorf("unknown embedding provider %q", p)
	}
	if settings.OCR.Enabled && !settings.OCR.IsConfigured() {
		return fmt.Errorf("OCR is enabled but has no API key or OAuth credentials")
	}

	return nil
}

// ValidateEmbeddingConfig validates the current embedding configuration
// by pinging the provider.
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

// Helper methods for reading config with defaults.

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return ""
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return ""
	}
	return provider
}

// getSchedulerConfig reads the scheduler configuration on top of the
// defaults. Intervals are duration strings like "10m" or "24h".
func (s *SettingsService) getSchedulerConfig(defaults domain.SchedulerConfig) domain.SchedulerConfig {
	cfg := domain.SchedulerConfig{
		Enabled:     s.getBool(keySchedulerOn, defaults.Enabled),
		TaskConfigs: make(map[string]domain.TaskConfig, len(defaults.TaskConfigs)),
	}

	for taskID, taskDefaults := range defaults.TaskConfigs {
		taskCfg := taskDefaults
		prefix := "scheduler." + taskConfigKeys[taskID] + "."

		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			taskCfg.Enabled = s.configStore.GetBool(prefix + "enabled")
		}
		if interval := s.configStore.GetString(prefix + "interval"); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil && d > 0 {
				taskCfg.Interval = d
			}
		}

		cfg.TaskConfigs[taskID] = taskCfg
	}

	return cfg
}
