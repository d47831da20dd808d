package search

import "errors"

// ErrNoSearchService is reported when the view runs without a wired
// search service.
var ErrNoSearchService = errors.New("search service is required")
