package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/book-discovery/internal/handler"
	"github.com/jonesrussell/book-discovery/internal/middleware"
	"github.com/jonesrussell/book-discovery/internal/telemetry"
)

// SetupRoutes configures all API routes.
func SetupRoutes(
	router *gin.Engine,
	discovery *handler.DiscoveryHandler,
	loans *handler.LoanHandler,
	health *handler.HealthHandler,
	maxRequestsPerMin int,
	rateLimitWindow time.Duration,
	done <-chan struct{},
) {
	router.GET("/health", health.HealthCheck)
	router.GET("/health/ready", health.ReadinessCheck)
	router.GET("/metrics", gin.WrapH(telemetry.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimiter(maxRequestsPerMin, rateLimitWindow, done))
	v1.GET("/readers/:id/recommendations", discovery.HandleRecommendations)
	v1.GET("/readers/:id/profile", discovery.HandleProfile)
	v1.POST("/loans", loans.HandleLoan)
}
