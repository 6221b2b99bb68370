package upstream

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxBodyExcerpt limits how much of a provider error body is kept for logs.
const maxBodyExcerpt = 200

// Error describes a failed HTTP call to an external provider.
type Error struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: upstream status %d", e.Provider, e.StatusCode)
}

// Transient reports whether the failure is worth retrying. Only a
// temporarily unavailable upstream (HTTP 503, e.g. a model still loading)
// qualifies; every other status is treated as permanent.
func (e *Error) Transient() bool {
	return e.StatusCode == http.StatusServiceUnavailable
}

// FromResponse builds an Error from a non-2xx provider response, keeping a
// short excerpt of the body for diagnostics.
func FromResponse(provider string, statusCode int, body []byte) *Error {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxBodyExcerpt {
		excerpt = excerpt[:maxBodyExcerpt]
	}
	return &Error{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       excerpt,
	}
}

// IsTransient reports whether err wraps a retryable upstream failure.
func IsTransient(err error) bool {
	var upstreamErr *Error
	return errors.As(err, &upstreamErr) && upstreamErr.Transient()
}
