// Package file stores application settings as a TOML file in the
// planroom config directory. Nested tables flatten to dot-notation
// keys, so "search.threshold" addresses [search] threshold.
package file
