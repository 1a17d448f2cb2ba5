package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
)

// fallbackThreshold is the unique-result count below which the broader
// alternative query is also tried.
const fallbackThreshold = 3

// SearchService turns an identified product into a ranked listing set.
// Flow: primary query -> fallback query when too few hits -> de-duplicate by
// ASIN (first-seen wins) -> rank -> cap.
type SearchService struct {
	client     domain.SearchClient
	maxResults int
}

// NewSearchService creates a new search service
func NewSearchService(client domain.SearchClient, maxResults int) *SearchService {
	if maxResults <= 0 {
		maxResults = 20
	}
	return &SearchService{
		client:     client,
		maxResults: maxResults,
	}
}

// Search runs the two-query search for the identified product and returns the
// ranked result set, best first.
func (s *SearchService) Search(ctx context.Context, product *domain.ProductInfo) ([]domain.Listing, error) {
	if product == nil || product.SearchQuery == "" {
		return nil, domain.ErrInvalidRequest
	}

	seen := make(map[string]bool)
	var merged []domain.Listing
	var lastErr error

	merge := func(items []domain.Listing) {
		for _, item := range items {
			if seen[item.ASIN] {
				continue
			}
			seen[item.ASIN] = true
			merged = append(merged, item)
		}
	}

	items, err := s.client.Search(ctx, product.SearchQuery, s.maxResults, 1)
	if err != nil {
		log.Printf("[SEARCH] Primary query %q failed: %v", product.SearchQuery, err)
		lastErr = err
	} else {
		merge(items)
		log.Printf("[SEARCH] Primary %q -> %d results", product.SearchQuery, len(merged))
	}

	// Too few hits: broaden with the model's fallback query. The client's
	// rate limiter spaces the second call, no extra delay needed.
	if len(merged) < fallbackThreshold && product.AlternativeQuery != "" &&
		product.AlternativeQuery != product.SearchQuery {
		items, err = s.client.Search(ctx, product.AlternativeQuery, s.maxResults, 1)
		if err != nil {
			log.Printf("[SEARCH] Fallback query %q failed: %v", product.AlternativeQuery, err)
			lastErr = err
		} else {
			merge(items)
			log.Printf("[SEARCH] Fallback %q -> %d total", product.AlternativeQuery, len(merged))
		}
	}

	if len(merged) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("%w for %q", domain.ErrNoResults, product.SearchQuery)
	}

	ranked := Rank(merged)
	if len(ranked) > s.maxResults {
		ranked = ranked[:s.maxResults]
	}
	return ranked, nil
}
