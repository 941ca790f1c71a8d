// Package fetcher provides the rate-limited HTTP transport shared by the
// remote spatial service clients.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/url"
)

// Fetcher defines the interface for reading remote data.
type Fetcher interface {
	// Get issues a GET for rawURL with params appended to its query string and
	// returns the response body. Non-2xx responses return a *StatusError.
	Get(ctx context.Context, rawURL string, params url.Values) (io.ReadCloser, error)
}

// StatusError reports a non-success HTTP status from a remote service.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetcher: unexpected status %d from %s", e.StatusCode, e.URL)
}
