// Package services implements the driving port interfaces:
// ingestion orchestration, hybrid search and ranking, document
// management, settings, and the maintenance scheduler. Services
// contain the core business logic and orchestrate calls to driven
// ports (adapters).
//
// Services are pure Go with no CGO or external dependencies.
package services
