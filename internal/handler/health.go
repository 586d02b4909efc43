package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// readinessTimeout bounds the database ping for the readiness check.
const readinessTimeout = 2 * time.Second

// HealthHandler handles health check requests.
type HealthHandler struct {
	version string
	ping    func(ctx context.Context) error
}

// NewHealthHandler creates a HealthHandler that reports the given version
// and uses ping for the readiness check.
func NewHealthHandler(version string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		version: version,
		ping:    ping,
	}
}

// HealthCheck returns service health status.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck verifies the database connection is usable.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
