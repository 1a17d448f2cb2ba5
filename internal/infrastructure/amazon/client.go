package amazon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
	"golang.org/x/time/rate"
)

// Client handles communication with the "Real-Time Amazon Data" search API.
// The backend enforces one request per second; the limiter is shared by every
// conversation in the process, so concurrent searches queue instead of burst.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	host        string
	country     string
	rateLimiter *rate.Limiter
}

// NewClient creates a new Amazon search client
func NewClient(apiKey, host, country string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      apiKey,
		host:        host,
		country:     country,
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// searchResponse mirrors the API envelope
type searchResponse struct {
	Status string `json:"status"`
	Data   struct {
		Products []rawProduct `json:"products"`
	} `json:"data"`
}

// Search fetches one Amazon results page for the query, de-duplicated by ASIN
// (first occurrence wins) and capped at maxResults. Listings come back in the
// API's relevance order; ranking is the caller's concern.
func (c *Client) Search(ctx context.Context, query string, maxResults, page int) ([]domain.Listing, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if page < 1 {
		page = 1
	}

	// Wait for rate limiter
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Add("query", query)
	params.Add("page", strconv.Itoa(page))
	params.Add("country", c.country)
	params.Add("sort_by", "RELEVANCE")

	reqURL := fmt.Sprintf("https://%s/search?%s", c.host, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrSearchFailed, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status 429", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[AMAZON] API error - status: %d, body: %s", resp.StatusCode, truncate(string(body), 200))
		return nil, fmt.Errorf("%w: status %d", domain.ErrSearchFailed, resp.StatusCode)
	}

	var search searchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrSearchFailed, err)
	}

	seen := make(map[string]bool)
	listings := make([]domain.Listing, 0, len(search.Data.Products))
	for _, raw := range search.Data.Products {
		listing, ok := mapProduct(raw)
		if !ok || seen[listing.ASIN] {
			continue
		}
		seen[listing.ASIN] = true
		listings = append(listings, listing)
		if len(listings) >= maxResults {
			break
		}
	}

	log.Printf("[AMAZON] Query %q page %d -> %d listings", query, page, len(listings))
	return listings, nil
}

// truncate shortens a string for log output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
