package amazon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient points a client at a local httptest server. The production code
// always dials https://{host}, so tests rewrite requests through a transport.
func testClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClient("test-key", "amazon-data.test", "US", 5*time.Second)
	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	client.httpClient = &http.Client{
		Transport: &rewriteTransport{target: serverURL},
		Timeout:   5 * time.Second,
	}
	return client
}

type rewriteTransport struct {
	target *url.URL
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func productsResponse(products []map[string]any) []byte {
	body, _ := json.Marshal(map[string]any{
		"status": "OK",
		"data":   map[string]any{"products": products},
	})
	return body
}

func TestNewClient(t *testing.T) {
	client := NewClient("key", "host.example", "US", 0)

	assert.NotNil(t, client)
	assert.Equal(t, "key", client.apiKey)
	assert.Equal(t, "host.example", client.host)
	assert.NotNil(t, client.rateLimiter)
	assert.NotNil(t, client.httpClient)
}

func TestSearch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "wireless earbuds", r.URL.Query().Get("query"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "US", r.URL.Query().Get("country"))
		assert.Equal(t, "RELEVANCE", r.URL.Query().Get("sort_by"))
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "amazon-data.test", r.Header.Get("X-RapidAPI-Host"))

		w.Write(productsResponse([]map[string]any{
			{"asin": "B001", "product_title": "Earbuds A", "product_price": "$19.99"},
			{"asin": "B002", "product_title": "Earbuds B", "product_price": "$24.99"},
		}))
	}))
	defer server.Close()

	listings, err := testClient(t, server).Search(context.Background(), "wireless earbuds", 10, 1)

	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "B001", listings[0].ASIN)
	assert.Equal(t, 19.99, listings[0].PriceUSD)
}

func TestSearch_DeduplicatesByASIN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(productsResponse([]map[string]any{
			{"asin": "B001", "product_title": "First occurrence"},
			{"asin": "B002", "product_title": "Other"},
			{"asin": "B001", "product_title": "Duplicate"},
		}))
	}))
	defer server.Close()

	listings, err := testClient(t, server).Search(context.Background(), "q", 10, 1)

	require.NoError(t, err)
	require.Len(t, listings, 2)
	assert.Equal(t, "First occurrence", listings[0].Title, "first occurrence wins")
}

func TestSearch_CapsAtMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		products := make([]map[string]any, 0, 8)
		for _, asin := range []string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B8"} {
			products = append(products, map[string]any{"asin": asin, "product_title": asin})
		}
		w.Write(productsResponse(products))
	}))
	defer server.Close()

	listings, err := testClient(t, server).Search(context.Background(), "q", 3, 1)

	require.NoError(t, err)
	assert.Len(t, listings, 3)
}

func TestSearch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(t, server).Search(context.Background(), "q", 10, 1)

	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestSearch_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testClient(t, server).Search(context.Background(), "q", 10, 1)

	assert.True(t, errors.Is(err, domain.ErrSearchFailed))
}

func TestSearch_EmptyQuery(t *testing.T) {
	client := NewClient("key", "host.example", "US", time.Second)
	_, err := client.Search(context.Background(), "   ", 10, 1)

	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
}

func TestSearch_PageClampedToOne(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Write(productsResponse(nil))
	}))
	defer server.Close()

	_, err := testClient(t, server).Search(context.Background(), "q", 10, 0)
	require.NoError(t, err)
}

func TestSearch_RateLimiterSpacesRequests(t *testing.T) {
	var timestamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timestamps = append(timestamps, time.Now())
		w.Write(productsResponse(nil))
	}))
	defer server.Close()

	client := testClient(t, server)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := client.Search(ctx, "q", 10, 1)
		require.NoError(t, err)
	}

	require.Len(t, timestamps, 3)
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap, 900*time.Millisecond,
			"requests %d and %d arrived %v apart, want about 1s", i-1, i, gap)
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("not json", 3)))
	}))
	defer server.Close()

	_, err := testClient(t, server).Search(context.Background(), "q", 10, 1)

	assert.True(t, errors.Is(err, domain.ErrSearchFailed))
}
