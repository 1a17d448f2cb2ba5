package domain

import "errors"

var (
	// ErrAnalysisFailed is returned when the vision call failed or returned
	// unusable data (malformed JSON, no recognizable product)
	ErrAnalysisFailed = errors.New("image analysis failed")

	// ErrSearchFailed is returned when the Amazon search request fails
	ErrSearchFailed = errors.New("amazon search request failed")

	// ErrNoResults is returned when a search completes but yields zero listings
	ErrNoResults = errors.New("no search results")

	// ErrRateLimited is returned when the search backend rejects for rate limiting
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrSessionNotFound is returned for pagination/filter requests against a
	// missing or expired session
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")
)
