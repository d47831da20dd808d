// Package migrations carries the versioned SQLite schema, compiled
// into the binary so the store can migrate itself on open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
