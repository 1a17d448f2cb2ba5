package domain

import "context"

// ImageAnalyzer defines the interface for vision-model product identification
type ImageAnalyzer interface {
	Analyze(ctx context.Context, image []byte) (*ProductInfo, error)
}

// SearchClient defines the interface for an Amazon search backend. page=1 is
// the first results page. Implementations must de-duplicate within a single
// response and honour the backend's request-rate ceiling internally.
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults, page int) ([]Listing, error)
}

// LinkShortener defines the interface for shortening outbound product URLs.
// Implementations must fall back to the original URL rather than fail.
type LinkShortener interface {
	Shorten(longURL string) string
}
