// Package mcp provides an MCP (Model Context Protocol) server adapter for PlanRoom.
// It enables AI assistants like Claude to query the local construction document index.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingDocumentService is returned by document tools when no document
// service was provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")
