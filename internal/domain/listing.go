package domain

import (
	"fmt"
	"math"
)

// Listing is a single Amazon search result. Rating and ReviewCount are zero
// when the backend did not report them; such listings are treated as unscored
// and sort after every scored listing.
type Listing struct {
	ASIN              string  `json:"asin"`
	Title             string  `json:"title"`
	ImageURL          string  `json:"image_url,omitempty"`
	PriceUSD          float64 `json:"price_usd,omitempty"`
	Currency          string  `json:"currency"`
	Rating            float64 `json:"rating,omitempty"`       // 0-5, 0 = absent
	ReviewCount       int     `json:"review_count,omitempty"` // 0 = absent
	IsAmazonFulfilled bool    `json:"is_amazon_fulfilled"`
	IsSoldByAmazon    bool    `json:"is_sold_by_amazon"`
	IsPrime           bool    `json:"is_prime"`
	MerchantName      string  `json:"merchant_name,omitempty"`
	Availability      string  `json:"availability,omitempty"`
	URL               string  `json:"url,omitempty"`
}

// Score is the ranking key: rating × log10(reviews + 1).
// Listings missing either signal score 0.
func (l *Listing) Score() float64 {
	if l.Rating <= 0 || l.ReviewCount <= 0 {
		return 0
	}
	return l.Rating * math.Log10(float64(l.ReviewCount)+1)
}

// QualifiesForFreeDelivery reports whether the listing is likely eligible for
// Amazon's free international delivery above the cart threshold. This is a
// heuristic, not a guarantee: the FBA flag is exact when the backend provides
// it, Prime and sold-by-Amazon are proxies for backends that don't.
func (l *Listing) QualifiesForFreeDelivery() bool {
	return l.IsAmazonFulfilled || l.IsPrime || l.IsSoldByAmazon
}

// DeliveryBadge is a short fulfillment description for display.
func (l *Listing) DeliveryBadge() string {
	switch {
	case l.IsSoldByAmazon:
		return "Ships from Amazon.com"
	case l.IsAmazonFulfilled:
		return "Fulfilled by Amazon (FBA)"
	case l.IsPrime:
		return "Prime eligible (likely FBA)"
	default:
		return "Third-party seller"
	}
}

// AffiliateURL builds the product URL from the ASIN at display time, so a tag
// change affects all subsequent renders. Empty tag yields a plain URL.
func (l *Listing) AffiliateURL(marketplace, tag string) string {
	if marketplace == "" {
		marketplace = "www.amazon.com"
	}
	base := fmt.Sprintf("https://%s/dp/%s", marketplace, l.ASIN)
	if tag == "" {
		return base
	}
	return fmt.Sprintf("%s?tag=%s&linkCode=ogi&th=1&psc=1", base, tag)
}
