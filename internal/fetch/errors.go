package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL            string
	StatusCode     int
	RateLimitReset string // X-RateLimit-Reset header, if any
}

func (e *StatusError) Error() string {
	if e.StatusCode == http.StatusForbidden {
		reset := e.RateLimitReset
		if reset == "" {
			reset = "unknown"
		}
		return fmt.Sprintf("GET %s: HTTP %d (GitHub API rate limit exceeded, resets at: %s)", e.URL, e.StatusCode, reset)
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// IsNotFound reports a 404 anywhere in err's chain.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// IsRateLimited reports a 403 or 429 anywhere in err's chain.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) &&
		(se.StatusCode == http.StatusForbidden || se.StatusCode == http.StatusTooManyRequests)
}
