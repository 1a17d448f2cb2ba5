package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/leonaffi-byte/amazon-photo-bot/internal/domain"
)

// systemPrompt asks the model for a fixed JSON schema. The response must be a
// bare JSON object; parseModelJSON tolerates markdown fences regardless.
const systemPrompt = `You are an expert product identification assistant.
Analyse the product photo and return ONLY a valid JSON object - no markdown, no prose.

JSON schema (all fields required unless marked optional):
{
  "product_name":        "concise name - brand + model if visible",
  "brand":               "brand name or empty string",
  "category":            "Amazon browse category (e.g. Electronics, Kitchen)",
  "key_features":        ["up to 5 most distinctive features"],
  "amazon_search_query": "under 100 chars, optimised Amazon keyword search string",
  "alternative_query":   "broader fallback search if main query fails",
  "confidence":          0.0-1.0 identification confidence as a number
}

Rules:
- amazon_search_query: most specific terms first, include model number if visible
- If brand unknown, omit it from the search query to avoid zero results
- key_features: focus on what distinguishes this from similar products`

const userPrompt = "Analyse this product photo and return the JSON. " +
	"Focus on identifying exactly what this is so a shopper can find it on Amazon."

// Client sends product photos to an OpenAI-compatible vision endpoint and
// parses the structured identification result.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewClient creates a new vision API client
func NewClient(apiKey, baseURL, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
	}
}

// chatRequest is the subset of the chat-completions request body we use.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []contentPart
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Analyze sends the image to the vision model and returns the parsed
// ProductInfo. One attempt only; failures surface as ErrAnalysisFailed.
func (c *Client) Analyze(ctx context.Context, image []byte) (*domain.ProductInfo, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	b64 := base64.StdEncoding.EncodeToString(image)
	req := chatRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   512,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{
					Type: "image_url",
					ImageURL: &imageURL{
						URL:    "data:image/jpeg;base64," + b64,
						Detail: "high",
					},
				},
				{Type: "text", Text: userPrompt},
			}},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrAnalysisFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[VISION] API error - status: %d, body: %s", resp.StatusCode, truncate(string(respBody), 300))
		return nil, fmt.Errorf("%w: status %d", domain.ErrAnalysisFailed, resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", domain.ErrAnalysisFailed, err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", domain.ErrAnalysisFailed)
	}

	var info domain.ProductInfo
	content := chat.Choices[0].Message.Content
	if err := parseModelJSON(content, &info); err != nil {
		log.Printf("[VISION] Non-JSON model output: %s", truncate(content, 300))
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	if strings.TrimSpace(info.Name) == "" || strings.TrimSpace(info.SearchQuery) == "" {
		return nil, fmt.Errorf("%w: no recognizable product in response", domain.ErrAnalysisFailed)
	}
	if info.AlternativeQuery == "" {
		info.AlternativeQuery = info.SearchQuery
	}
	if info.Confidence < 0 {
		info.Confidence = 0
	}
	if info.Confidence > 1 {
		info.Confidence = 1
	}

	log.Printf("[VISION] Identified %q (brand: %q, confidence: %.2f) in %dms",
		info.Name, info.Brand, info.Confidence, time.Since(start).Milliseconds())

	return &info, nil
}

// truncate shortens a string for log output
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
