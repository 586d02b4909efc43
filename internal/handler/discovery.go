// Package handler contains the gin request handlers for the discovery API.
package handler

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/book-discovery/internal/domain"
	"github.com/jonesrussell/book-discovery/internal/logger"
	"github.com/jonesrussell/book-discovery/internal/recommend"
	"github.com/jonesrussell/book-discovery/internal/telemetry"
)

// readerIDPattern is the external id format: a fixed prefix and digits,
// e.g. "R-0042". Format validation lives here, not in the core.
var readerIDPattern = regexp.MustCompile(`^R-\d{4,}$`)

// DiscoveryHandler serves recommendation and reading profile requests.
type DiscoveryHandler struct {
	svc     *recommend.Service
	metrics *telemetry.Metrics
	logger  logger.Logger
}

// NewDiscoveryHandler creates a DiscoveryHandler with the given dependencies.
func NewDiscoveryHandler(
	svc *recommend.Service,
	metrics *telemetry.Metrics,
	log logger.Logger,
) *DiscoveryHandler {
	return &DiscoveryHandler{
		svc:     svc,
		metrics: metrics,
		logger:  log,
	}
}

// HandleRecommendations serves GET /api/v1/readers/:id/recommendations.
func (h *DiscoveryHandler) HandleRecommendations(c *gin.Context) {
	readerID, ok := readerParam(c)
	if !ok {
		return
	}

	opts, ok := parseRequestOptions(c)
	if !ok {
		return
	}

	start := time.Now()
	recs, reason, err := h.svc.Recommend(c.Request.Context(), readerID, opts)
	if err != nil {
		h.logger.Error("Recommendation failed",
			logger.String("reader_id", readerID),
			logger.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "data access failure"})
		return
	}

	h.metrics.RecommendationDuration.Observe(time.Since(start).Seconds())
	h.metrics.RecommendationsTotal.WithLabelValues(strategyLabel(reason)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"reader_id":       readerID,
		"recommendations": recs,
	})
}

// HandleProfile serves GET /api/v1/readers/:id/profile.
func (h *DiscoveryHandler) HandleProfile(c *gin.Context) {
	readerID, ok := readerParam(c)
	if !ok {
		return
	}

	profile, err := h.svc.ReadingProfile(c.Request.Context(), readerID)
	if err != nil {
		h.logger.Error("Reading profile failed",
			logger.String("reader_id", readerID),
			logger.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "data access failure"})
		return
	}

	h.metrics.ProfilesTotal.Inc()
	c.JSON(http.StatusOK, profile)
}

// readerParam extracts and validates the reader id path parameter.
// Responds with 400 and returns false on a malformed id.
func readerParam(c *gin.Context) (string, bool) {
	readerID := c.Param("id")
	if !readerIDPattern.MatchString(readerID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reader id"})
		return "", false
	}
	return readerID, true
}

// parseRequestOptions reads the optional limit and min_score query
// parameters. Responds with 400 and returns false on unparseable values.
func parseRequestOptions(c *gin.Context) (recommend.RequestOptions, bool) {
	var opts recommend.RequestOptions

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return opts, false
		}
		opts.Limit = limit
	}

	if scoreStr := c.Query("min_score"); scoreStr != "" {
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil || score < 0 || score > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_score"})
			return opts, false
		}
		opts.MinScore = score
	}

	return opts, true
}

// strategyLabel maps the service's fallback reason to the metrics label.
// An empty reason means peer matching produced the result, even if the
// candidate pool came up empty.
func strategyLabel(reason domain.FallbackReason) string {
	switch reason {
	case domain.FallbackGlobalPopularity:
		return telemetry.StrategyGlobalFallback
	case domain.FallbackCategoryPopularity:
		return telemetry.StrategyCategoryFallback
	default:
		return telemetry.StrategyPeer
	}
}
