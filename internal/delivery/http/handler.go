package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/leonaffi-byte/amazon-photo-bot/internal/infrastructure/shortener"
)

// Handler holds dependencies for the shortener HTTP endpoints
type Handler struct {
	links *shortener.Service
}

// NewHandler creates a new HTTP handler
func NewHandler(links *shortener.Service) *Handler {
	return &Handler{links: links}
}

// HealthCheck returns the health status of the redirect service
func (h *Handler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, fmt.Sprintf("OK - %d links stored", h.links.Size()))
}

// Stats returns click analytics for a short code
func (h *Handler) Stats(c *gin.Context) {
	code := c.Param("code")

	stats, found := h.links.Stats(code)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "code not found"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Redirect resolves a short code and sends the visitor to the long URL.
// Uses 302 because Telegram's in-app browser handles temporary redirects
// more reliably than cached permanent ones.
func (h *Handler) Redirect(c *gin.Context) {
	code := c.Param("code")

	longURL, found := h.links.Resolve(code)
	if !found {
		c.String(http.StatusNotFound, "Link not found or expired.")
		return
	}

	c.Redirect(http.StatusFound, longURL)
}
