package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or OpenAI-compatible
	// gateways).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
// Without embeddings, retrieval degrades to keyword-only.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// OCRSettings holds the scanned-document fallback configuration.
type OCRSettings struct {
	// Enabled turns the OCR fallback on. Scanned documents fail
	// ingestion when OCR is disabled.
	Enabled bool

	// APIKey authenticates to the Cloud Vision API directly.
	APIKey string

	// ClientID, ClientSecret and RefreshToken authenticate via OAuth
	// when no API key is set.
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// IsConfigured returns true if OCR can actually run.
func (o OCRSettings) IsConfigured() bool {
	if !o.Enabled {
		return false
	}
	return o.APIKey != "" || (o.ClientID != "" && o.ClientSecret != "" && o.RefreshToken != "")
}

// SearchSettings holds retrieval behaviour configuration.
type SearchSettings struct {
	// KeywordSimilarity is the placeholder similarity assigned to
	// keyword-only hits, which have no distance metric of their own.
	KeywordSimilarity float64

	// DefaultThreshold is the minimum vector similarity used when the
	// caller does not pass one.
	DefaultThreshold float64

	// DefaultLimit is the per-sub-search candidate cap used when the
	// caller does not pass one.
	DefaultLimit int
}

// IngestionSettings holds ingestion pipeline configuration.
type IngestionSettings struct {
	// MaxConcurrent bounds in-flight pipelines across all documents.
	MaxConcurrent int

	// MaxAttempts is the retry budget for one pipeline.
	MaxAttempts int

	// IntakeDir is the directory the intake watcher observes. Empty
	// disables watching.
	IntakeDir string

	// IntakeIgnore lists glob patterns the watcher skips.
	IntakeIgnore []string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// DataDir is the root for the database and blob storage.
	DataDir string

	// ActiveProjectID is the caller's current project, used for the
	// search scope boost and as the default ingest target.
	ActiveProjectID string

	// Search holds retrieval behaviour settings.
	Search SearchSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// OCR holds the scanned-document fallback settings.
	OCR OCRSettings

	// Ingestion holds pipeline settings.
	Ingestion IngestionSettings

	// Scheduler holds maintenance task settings.
	Scheduler SchedulerConfig
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider and OCR are left unconfigured; users set them
// up via `planroom settings`.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			KeywordSimilarity: 0.5,
			DefaultThreshold:  0.2,
			DefaultLimit:      DefaultSearchLimit,
		},
		Embedding: EmbeddingSettings{},
		OCR:       OCRSettings{},
		Ingestion: IngestionSettings{
			MaxConcurrent: 5,
			MaxAttempts:   3,
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// SchedulerConfig holds maintenance scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TaskConfigs holds per-task configuration.
	TaskConfigs map[string]TaskConfig
}

// TaskConfig holds configuration for a single task.
type TaskConfig struct {
	// Enabled indicates whether this task should run.
	Enabled bool

	// Interval defines how often the task should run.
	Interval time.Duration
}

// GetTaskConfig returns the configuration for a specific task.
// Returns a zero TaskConfig if the task is not configured.
func (c *SchedulerConfig) GetTaskConfig(taskID string) TaskConfig {
	if c.TaskConfigs == nil {
		return TaskConfig{}
	}
	return c.TaskConfigs[taskID]
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled: true,
		TaskConfigs: map[string]TaskConfig{
			TaskIDRequeueStuck: {
				Enabled:  true,
				Interval: 10 * time.Minute,
			},
			TaskIDPruneOrphans: {
				Enabled:  true,
				Interval: 24 * time.Hour,
			},
		},
	}
}
