package amazon

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
)

// rawProduct is one search hit as the API returns it. Numeric-looking fields
// arrive as strings ("$29.99", "4.5").
type rawProduct struct {
	ASIN              string `json:"asin"`
	Title             string `json:"product_title"`
	Price             string `json:"product_price"`
	MinimumOfferPrice string `json:"product_minimum_offer_price"`
	StarRating        string `json:"product_star_rating"`
	NumRatings        int    `json:"product_num_ratings"`
	Photo             string `json:"product_photo"`
	URL               string `json:"product_url"`
	IsPrime           bool   `json:"is_prime"`
	Delivery          string `json:"delivery"`
	SellerName        string `json:"seller_name"`
	Currency          string `json:"currency"`
}

var nonPriceCharsRegex = regexp.MustCompile(`[^\d.]`)

// mapProduct converts a raw API product into a domain Listing.
// Returns false when the entry is unusable (no ASIN).
//
// Fulfillment detection from the delivery text is empirical: Amazon writes
// "FREE delivery ... on $35 of items shipped by Amazon" for FBA items and a
// plain "FREE delivery ..." for third-party ones, so "shipped by Amazon" is
// the most reliable FBA indicator this API exposes.
func mapProduct(raw rawProduct) (domain.Listing, bool) {
	if raw.ASIN == "" {
		return domain.Listing{}, false
	}

	delivery := strings.ToLower(raw.Delivery)
	seller := strings.ToLower(strings.TrimSpace(raw.SellerName))

	shippedByAmazon := strings.Contains(delivery, "shipped by amazon")
	fulfilledByAmazon := strings.Contains(delivery, "fulfilled by amazon")
	primeInDelivery := strings.Contains(delivery, "prime members")
	soldByAmazon := seller == "amazon" || strings.Contains(seller, "amazon.com")

	currency := raw.Currency
	if currency == "" {
		currency = "USD"
	}

	availability := "Unknown"
	if raw.URL != "" {
		availability = "In Stock"
	}

	merchant := strings.TrimSpace(raw.SellerName)
	if soldByAmazon && merchant == "" {
		merchant = "Amazon.com"
	}

	return domain.Listing{
		ASIN:              raw.ASIN,
		Title:             strings.TrimSpace(raw.Title),
		ImageURL:          raw.Photo,
		PriceUSD:          parsePrice(firstNonEmpty(raw.Price, raw.MinimumOfferPrice)),
		Currency:          currency,
		Rating:            parseRating(raw.StarRating),
		ReviewCount:       max(raw.NumRatings, 0),
		IsAmazonFulfilled: shippedByAmazon || fulfilledByAmazon || soldByAmazon,
		IsSoldByAmazon:    soldByAmazon,
		IsPrime:           raw.IsPrime || primeInDelivery,
		MerchantName:      merchant,
		Availability:      availability,
		URL:               raw.URL,
	}, true
}

// parsePrice extracts a numeric value from strings like "$29.99" or "$1,299.00".
// Returns 0 when nothing numeric is present.
func parsePrice(s string) float64 {
	cleaned := nonPriceCharsRegex.ReplaceAllString(strings.ReplaceAll(s, ",", ""), "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseRating parses a star rating string, clamping to the 0-5 scale.
func parseRating(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
