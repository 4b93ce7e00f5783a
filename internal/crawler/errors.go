package crawler

import "errors"

var (
	// ErrInvalidStartURL is returned when the crawl start URL has no host.
	ErrInvalidStartURL = errors.New("invalid start URL")

	// ErrNoHTTPClient is returned when the image scanner has no client.
	ErrNoHTTPClient = errors.New("no HTTP client configured for image fetches")
)
