package model

import "errors"

var (
	// ErrInvalidFilename is returned when a file name fails shape validation
	ErrInvalidFilename = errors.New("invalid filename format")

	// ErrNoCatalogMatch is returned when no variant satisfies any matching tier
	ErrNoCatalogMatch = errors.New("no SKU match")

	// ErrAlreadyProcessed is returned when the (product, color) pair already
	// received an asset of this category during the run
	ErrAlreadyProcessed = errors.New("already satisfied")

	// ErrTransientNetwork marks timeouts and connection resets that are
	// safe to retry with backoff
	ErrTransientNetwork = errors.New("transient network error")

	// ErrQuotaExceeded is returned when the source API rejects a call for
	// exceeding its quota
	ErrQuotaExceeded = errors.New("source quota exceeded")

	// ErrAuthExpired signals an expired access token; handled once by the
	// credential refresh wrapper
	ErrAuthExpired = errors.New("access token expired")

	// ErrCatalogFetch is fatal for the whole run
	ErrCatalogFetch = errors.New("catalog fetch failed")

	// ErrFolderLookup is fatal for the whole run
	ErrFolderLookup = errors.New("source folder lookup failed")

	// ErrRateLimitExceeded is returned when the local limiter exhausts its
	// bounded wait attempts
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)
