package usecase

import (
	"math"
	"sort"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
)

// Score computes the ranking key for a rating/review pair:
// rating × log10(reviews + 1). A missing rating or review count scores 0,
// which places the listing behind every scored one.
func Score(rating float64, reviewCount int) float64 {
	if rating <= 0 || reviewCount <= 0 {
		return 0
	}
	return rating * math.Log10(float64(reviewCount)+1)
}

// Rank returns a new slice sorted best-first by score. The sort is stable, so
// ties and unscored listings keep the search API's original relative order.
func Rank(listings []domain.Listing) []domain.Listing {
	ranked := make([]domain.Listing, len(listings))
	copy(ranked, listings)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	return ranked
}
