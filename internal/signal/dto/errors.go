package dto

import "errors"

var (
	// ErrRateLimited is returned when a per-user ceiling has been reached.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstreamUnavailable wraps quote or model provider failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrMalformedModelOutput is returned when the model text does not match the signal schema.
	ErrMalformedModelOutput = errors.New("malformed model output")
	// ErrCacheUnavailable wraps analysis store failures.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrNoValidQuotes is returned when every fetched quote failed validation.
	ErrNoValidQuotes = errors.New("no valid market data received")
)
