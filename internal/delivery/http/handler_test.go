package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/infrastructure/shortener"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupTestRouter() (*gin.Engine, *shortener.Service) {
	links := shortener.NewService("https://go.example.com")
	handler := NewHandler(links)
	return SetupRouter(handler, false), links
}

func shortCode(t *testing.T, links *shortener.Service, longURL string) string {
	t.Helper()
	short := links.Shorten(longURL)
	return strings.TrimPrefix(short, "https://go.example.com/")
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("reports link count", func(t *testing.T) {
		router, links := setupTestRouter()
		links.Shorten("https://www.amazon.com/dp/B001")

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
		if !strings.Contains(w.Body.String(), "1 links stored") {
			t.Errorf("Body = %q, want link count", w.Body.String())
		}
	})
}

func TestRedirectEndpoint(t *testing.T) {
	t.Run("redirects known code with 302", func(t *testing.T) {
		router, links := setupTestRouter()
		code := shortCode(t, links, "https://www.amazon.com/dp/B08N5WRWNW?tag=demo-20")

		req, _ := http.NewRequest("GET", "/"+code, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusFound)
		}
		gotLocation := w.Header().Get("Location")
		if gotLocation != "https://www.amazon.com/dp/B08N5WRWNW?tag=demo-20" {
			t.Errorf("Location = %q, want the long URL", gotLocation)
		}
	})

	t.Run("returns 404 for unknown code", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("GET", "/nosuch1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})

	t.Run("counts clicks", func(t *testing.T) {
		router, links := setupTestRouter()
		code := shortCode(t, links, "https://www.amazon.com/dp/B001")

		for i := 0; i < 3; i++ {
			req, _ := http.NewRequest("GET", "/"+code, nil)
			router.ServeHTTP(httptest.NewRecorder(), req)
		}

		stats, found := links.Stats(code)
		if !found {
			t.Fatal("Stats: code not found")
		}
		if stats.Clicks != 3 {
			t.Errorf("Clicks = %d, want 3", stats.Clicks)
		}
	})
}

func TestStatsEndpoint(t *testing.T) {
	t.Run("returns click stats as JSON", func(t *testing.T) {
		router, links := setupTestRouter()
		code := shortCode(t, links, "https://www.amazon.com/dp/B001")

		clickReq, _ := http.NewRequest("GET", "/"+code, nil)
		router.ServeHTTP(httptest.NewRecorder(), clickReq)

		req, _ := http.NewRequest("GET", "/stats/"+code, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["code"] != code {
			t.Errorf("code = %v, want %s", response["code"], code)
		}
		if response["clicks"] != float64(1) {
			t.Errorf("clicks = %v, want 1", response["clicks"])
		}
		if response["long_url"] != "https://www.amazon.com/dp/B001" {
			t.Errorf("long_url = %v, want the original URL", response["long_url"])
		}
	})

	t.Run("stats request does not count as click", func(t *testing.T) {
		router, links := setupTestRouter()
		code := shortCode(t, links, "https://www.amazon.com/dp/B001")

		req, _ := http.NewRequest("GET", "/stats/"+code, nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		stats, _ := links.Stats(code)
		if stats.Clicks != 0 {
			t.Errorf("Clicks = %d, want 0", stats.Clicks)
		}
	})

	t.Run("returns 404 for unknown code", func(t *testing.T) {
		router, _ := setupTestRouter()

		req, _ := http.NewRequest("GET", "/stats/nosuch1", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		router, _ := setupTestRouter()

		router.GET("/panic/test", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/panic/test", nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}
