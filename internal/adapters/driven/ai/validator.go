package ai

import (
	"github.com/planroomhq/planroom-cli/internal/core/domain"
	"github.com/planroomhq/planroom-cli/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates embedding and OCR provider configurations.
type ConfigValidator struct{}

// NewConfigValidator creates a new provider config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding validates an embedding configuration by pinging the provider.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	return ValidateEmbeddingConfig(config)
}

// ValidateOCR validates an OCR configuration by constructing the client.
func (v *ConfigValidator) ValidateOCR(config *domain.OCRSettings) error {
	return ValidateOCRConfig(config)
}
