package http

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router for the redirect service
func SetupRouter(handler *Handler, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/health", handler.HealthCheck)
	router.GET("/stats/:code", handler.Stats)

	// Catch-all short-code redirect, kept last so it cannot shadow the
	// routes above
	router.GET("/:code", handler.Redirect)

	return router
}
