package config

import "errors"

// Configuration validation errors.
// Validate and the input validators return these so callers can use errors.Is.
var (
	// ErrNoCompany is returned when no company name is given.
	ErrNoCompany = errors.New("no company specified: provide a company name")

	// ErrInvalidCompanyName is returned for names outside 2-100 characters of letters, digits and &-.,() punctuation.
	ErrInvalidCompanyName = errors.New("invalid company name: use 2-100 characters with letters, numbers, and basic punctuation")

	// ErrInvalidLocation is returned for locations outside 2-50 characters of letters and -,' punctuation.
	ErrInvalidLocation = errors.New("invalid location: use 2-50 characters with letters and basic punctuation")

	// ErrInvalidWebsite is returned when the website host is not a domain name.
	ErrInvalidWebsite = errors.New("invalid website: enter a valid domain such as example.com or www.example.com")

	// ErrInvalidPages is returned when the page count is outside 1-20.
	ErrInvalidPages = errors.New("invalid pages to scrape: must be between 1 and 20")

	// ErrNoInput is returned when a run has neither a website to crawl nor hit or record files.
	ErrNoInput = errors.New("nothing to process: provide --website, --hits or --records")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidSimilarity is returned when the near-duplicate threshold is outside (0, 1].
	ErrInvalidSimilarity = errors.New("invalid similarity threshold: must be in (0, 1]")

	// ErrConflictingTransport is returned when --tor and --proxy are both set.
	ErrConflictingTransport = errors.New("conflicting transport: --tor and --proxy cannot be used together")
)
