package shortener

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"
)

// Base-62 alphabet for generated codes. 62^7 gives ~3.5 trillion combinations.
const (
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 7
)

// LinkStats holds click analytics for a single short link
type LinkStats struct {
	Code      string    `json:"code"`
	LongURL   string    `json:"long_url"`
	Clicks    int64     `json:"clicks"`
	CreatedAt time.Time `json:"created_at"`
	LastClick time.Time `json:"last_click,omitempty"`
}

type shortLink struct {
	longURL   string
	clicks    int64
	createdAt time.Time
	lastClick time.Time
}

// Service is a thread-safe in-memory URL shortener.
// The same long URL always shortens to the same code.
type Service struct {
	baseURL string
	byCode  map[string]*shortLink
	byURL   map[string]string
	mutex   sync.RWMutex
}

// NewService creates a shortener that issues links under baseURL
func NewService(baseURL string) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		byCode:  make(map[string]*shortLink),
		byURL:   make(map[string]string),
	}
}

// Shorten returns a short link for longURL, reusing the existing code
// when this URL has been shortened before. Falls back to the original
// URL if code generation fails.
func (s *Service) Shorten(longURL string) string {
	if longURL == "" {
		return longURL
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if code, exists := s.byURL[longURL]; exists {
		return s.baseURL + "/" + code
	}

	code, err := s.generateUniqueCode()
	if err != nil {
		return longURL
	}

	s.byCode[code] = &shortLink{
		longURL:   longURL,
		createdAt: time.Now(),
	}
	s.byURL[longURL] = code

	return s.baseURL + "/" + code
}

// Resolve looks up the long URL for a code and records the click.
// The second return is false when the code is unknown.
func (s *Service) Resolve(code string) (string, bool) {
	// Strip any file extension someone might have appended
	if idx := strings.IndexByte(code, '.'); idx >= 0 {
		code = code[:idx]
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	link, exists := s.byCode[code]
	if !exists {
		return "", false
	}

	link.clicks++
	link.lastClick = time.Now()

	return link.longURL, true
}

// Stats returns click analytics for a code without counting a click
func (s *Service) Stats(code string) (LinkStats, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	link, exists := s.byCode[code]
	if !exists {
		return LinkStats{}, false
	}

	return LinkStats{
		Code:      code,
		LongURL:   link.longURL,
		Clicks:    link.clicks,
		CreatedAt: link.createdAt,
		LastClick: link.lastClick,
	}, true
}

// Size returns the number of stored links
func (s *Service) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.byCode)
}

// generateUniqueCode picks a random base-62 code not already in use.
// Caller must hold the write lock.
func (s *Service) generateUniqueCode() (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		if _, taken := s.byCode[code]; !taken {
			return code, nil
		}
	}
	// Collisions at this length are vanishingly rare; widen as a last resort
	return randomCode(codeLength + 3)
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}

// Passthrough is a LinkShortener that returns URLs unchanged. Used when
// the self-hosted shortener is disabled.
type Passthrough struct{}

func (Passthrough) Shorten(longURL string) string { return longURL }
