// Package tui provides an interactive terminal user interface for PlanRoom.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/planroomhq/planroom-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
// The TUI is a read-only surface: it searches, lists and reads, but
// never mutates the index.
type Ports struct {
	// Search provides hybrid retrieval.
	Search driving.SearchService

	// Document manages indexed documents.
	Document driving.DocumentService

	// Settings resolves the active project for scoping. Optional;
	// without it every view operates across all projects.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	search driving.SearchService,
	document driving.DocumentService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Search:   search,
		Document: document,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
