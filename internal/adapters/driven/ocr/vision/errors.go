package vision

import (
	"errors"
	"net/http"
	"strconv"

	"google.golang.org/api/googleapi"
)

// Common Vision API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("vision: unauthorised (invalid credentials)")

	// ErrForbidden indicates the Vision API is disabled for the project
	// or the credentials lack the required scope.
	ErrForbidden = errors.New("vision: forbidden (check that the Vision API is enabled)")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("vision: rate limit exceeded")
)

// wrapError converts a Vision API error to a more specific error type.
// Rate-limit responses also open the limiter's backoff window.
func (s *Service) wrapError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusTooManyRequests:
		seconds := 0
		if v := gerr.Header.Get("Retry-After"); v != "" {
			seconds, _ = strconv.Atoi(v)
		}
		s.limiter.RecordRetryAfter(seconds)
		return ErrRateLimited
	default:
		return err
	}
}
