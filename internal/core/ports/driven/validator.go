package driven

import "github.com/planroomhq/planroom-cli/internal/core/domain"

// AIConfigValidator validates provider configurations.
// Implementations verify that configurations are usable by constructing
// the underlying client and, where the provider supports it, testing
// connectivity.
type AIConfigValidator interface {
	// ValidateEmbedding validates an embedding configuration by pinging the provider.
	// Returns nil if configuration is valid or not configured.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateOCR validates an OCR configuration by constructing the client.
	// Returns nil if configuration is valid or not configured.
	ValidateOCR(config *domain.OCRSettings) error
}
