// Package extractors provides implementations of the Extractor interface
// for the supported document formats. Each extractor knows how to pull
// plain text out of a specific MIME type.
//
// Extractors are registered with the Registry at startup. Dispatch is by
// declared MIME type over the closed set of registered types; anything
// else fails with domain.ErrUnsupportedFormat.
package extractors
