package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while still printing a human-readable message.
var (
	// ErrNoTarget is returned when neither arguments nor --list provide a URL.
	ErrNoTarget = errors.New("no target specified: provide a URL or use --list")

	// ErrInvalidConcurrency is returned when concurrency is outside 1..10.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be between 1 and 10")

	// ErrInvalidInterBatchDelay is returned when the delay is outside 0s..5s.
	ErrInvalidInterBatchDelay = errors.New("invalid delay: must be between 0s and 5s")

	// ErrInvalidPerFetchTimeout is returned when the timeout is outside 5s..30s.
	ErrInvalidPerFetchTimeout = errors.New("invalid timeout: must be between 5s and 30s")

	// ErrInvalidRequestsPerSecond is returned for a negative rate.
	ErrInvalidRequestsPerSecond = errors.New("invalid rps: must be non-negative")

	// ErrInvalidSource is returned for an unknown --source value.
	ErrInvalidSource = errors.New("invalid source: must be proxy, direct, or render")

	// ErrMissingProxyEndpoint is returned when the proxy source has no endpoint.
	ErrMissingProxyEndpoint = errors.New("proxy source requires --proxy-endpoint")

	// ErrInvalidOutputFormat is returned for an unknown --format value.
	ErrInvalidOutputFormat = errors.New("invalid format: must be text, markdown, or json")

	// ErrInvalidLogFormat is returned for an unknown --log-format value.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to fall back to the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)
