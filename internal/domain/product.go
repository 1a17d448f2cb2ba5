package domain

// ProductInfo is the structured identification result the vision model
// returns for a photo. It is immutable once created and discarded after
// the Amazon search has been issued.
type ProductInfo struct {
	Name             string   `json:"product_name"`
	Brand            string   `json:"brand,omitempty"`
	Category         string   `json:"category,omitempty"`
	KeyFeatures      []string `json:"key_features,omitempty"`
	SearchQuery      string   `json:"amazon_search_query"`
	AlternativeQuery string   `json:"alternative_query,omitempty"`
	Confidence       float64  `json:"confidence"` // 0-1
}

// ConfidenceLabel buckets the numeric confidence for display.
func (p *ProductInfo) ConfidenceLabel() string {
	switch {
	case p.Confidence >= 0.75:
		return "high"
	case p.Confidence >= 0.4:
		return "medium"
	default:
		return "low"
	}
}
