package driving

import "github.com/planroomhq/planroom-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetActiveProject updates the caller's active project.
	SetActiveProject(projectID string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error

	// SetOCRAPIKey enables the OCR fallback with an API key.
	SetOCRAPIKey(apiKey string) error

	// SetOCRCredentials enables the OCR fallback with OAuth credentials.
	SetOCRCredentials(clientID, clientSecret, refreshToken string) error

	// SetKeywordSimilarity updates the placeholder similarity assigned
	// to keyword-only hits.
	SetKeywordSimilarity(value float64) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// Validate checks that current settings are internally consistent.
	Validate() error

	// ValidateEmbeddingConfig validates the current embedding
	// configuration by pinging the provider.
	ValidateEmbeddingConfig() error
}
